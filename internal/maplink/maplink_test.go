package maplink

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantLat float64
		wantLng float64
		wantOk  bool
	}{
		{
			name:    "at-sign path segment",
			url:     "https://www.google.com/maps/@39.904200,116.407400,15z",
			wantLat: 39.9042,
			wantLng: 116.4074,
			wantOk:  true,
		},
		{
			name:    "3d/4d marker segment",
			url:     "https://www.google.com/maps/place/Forbidden+City!3d39.9163!4d116.3972",
			wantLat: 39.9163,
			wantLng: 116.3972,
			wantOk:  true,
		},
		{
			name:    "q query param",
			url:     "https://www.google.com/maps?q=35.696677,138.430228",
			wantLat: 35.696677,
			wantLng: 138.430228,
			wantOk:  true,
		},
		{
			name:    "query param with space",
			url:     "https://www.google.com/maps?query=35.696677, 138.430228",
			wantLat: 35.696677,
			wantLng: 138.430228,
			wantOk:  true,
		},
		{
			name:    "negative coordinates",
			url:     "https://www.google.com/maps/@-33.8688,151.2093,12z",
			wantLat: -33.8688,
			wantLng: 151.2093,
			wantOk:  true,
		},
		{
			name:   "latitude out of range",
			url:    "https://www.google.com/maps?q=95.0,10.0",
			wantOk: false,
		},
		{
			name:   "no coordinates",
			url:    "https://www.google.com/maps/place/Tokyo",
			wantOk: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := Parse(tt.url)
			if ok != tt.wantOk {
				t.Errorf("Parse() ok = %v, want %v", ok, tt.wantOk)
				return
			}
			if !tt.wantOk {
				return
			}
			if p.Lat != tt.wantLat {
				t.Errorf("Parse() lat = %v, want %v", p.Lat, tt.wantLat)
			}
			if p.Lng != tt.wantLng {
				t.Errorf("Parse() lng = %v, want %v", p.Lng, tt.wantLng)
			}
		})
	}
}
