// Package maplink extracts a location from a shared map URL, so a challenge
// author can paste a link instead of dropping a pin.
package maplink

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/getupyang/geo-guess-diy/internal/model"
)

var (
	reAt   = regexp.MustCompile(`@(-?\d+(?:\.\d+)?),(-?\d+(?:\.\d+)?)`)
	re3d4d = regexp.MustCompile(`!3d(-?\d+(?:\.\d+)?)!4d(-?\d+(?:\.\d+)?)`)
	rePair = regexp.MustCompile(`^\s*(-?\d+(?:\.\d+)?)\s*,\s*(-?\d+(?:\.\d+)?)\s*$`)
)

// Resolve follows a (possibly shortened) map link through its redirects and
// extracts the coordinate from the final URL.
func Resolve(ctx context.Context, link string) (model.GeoPoint, error) {
	client := &http.Client{
		Timeout: 15 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return errors.New("too many redirects")
			}
			return nil
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return model.GeoPoint{}, err
	}
	// Some endpoints behave better with a UA.
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; GeoTools/1.0)")

	resp, err := client.Do(req)
	if err != nil {
		return model.GeoPoint{}, err
	}
	defer resp.Body.Close()

	if resp.Request == nil || resp.Request.URL == nil {
		return model.GeoPoint{}, errors.New("failed to determine final URL")
	}
	finalURL := resp.Request.URL.String()

	p, ok := Parse(finalURL)
	if !ok {
		return model.GeoPoint{}, fmt.Errorf("coordinates not found in final URL: %s", finalURL)
	}
	return p, nil
}

// Parse extracts a coordinate from a fully-expanded map URL.
func Parse(s string) (model.GeoPoint, bool) {
	// Pattern A: .../@lat,lng,zoom...
	if m := reAt.FindStringSubmatch(s); len(m) == 3 {
		return parsePair(m[1], m[2])
	}
	// Pattern B: ...!3dlat!4dlng...
	if m := re3d4d.FindStringSubmatch(s); len(m) == 3 {
		return parsePair(m[1], m[2])
	}

	// Pattern C: query params like ?q=lat,lng or ?query=lat,lng
	u, err := url.Parse(s)
	if err == nil {
		for _, key := range []string{"q", "query"} {
			if v := u.Query().Get(key); v != "" {
				if m := rePair.FindStringSubmatch(v); len(m) == 3 {
					return parsePair(m[1], m[2])
				}
			}
		}
	}

	return model.GeoPoint{}, false
}

func parsePair(a, b string) (model.GeoPoint, bool) {
	lat, err1 := strconv.ParseFloat(a, 64)
	lng, err2 := strconv.ParseFloat(b, 64)
	if err1 != nil || err2 != nil {
		return model.GeoPoint{}, false
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return model.GeoPoint{}, false
	}
	return model.GeoPoint{Lat: lat, Lng: lng}, true
}
