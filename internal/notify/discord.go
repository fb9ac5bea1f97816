// Package notify posts leaderboard events to a Discord channel. Purely
// best-effort: a failed announcement is logged and never affects the
// playthrough that triggered it.
package notify

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/getupyang/geo-guess-diy/internal/model"
)

// Announcer publishes a user's new collection best.
type Announcer interface {
	AnnounceBest(collection *model.CollectionDescriptor, attempt *model.CollectionAttempt, rank int)
}

// Discord sends announcements over the Discord REST API. No gateway
// connection is opened; ChannelMessageSend works with just the token.
type Discord struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscord(token, channelID string) (*Discord, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	return &Discord{session: session, channelID: channelID}, nil
}

func (d *Discord) AnnounceBest(collection *model.CollectionDescriptor, attempt *model.CollectionAttempt, rank int) {
	msg := fmt.Sprintf("🏆 %s scored %d on \"%s\" — rank #%d",
		attempt.UserName, attempt.TotalScore, collection.Name, rank)
	if _, err := d.session.ChannelMessageSend(d.channelID, msg); err != nil {
		log.Printf("Failed to announce to discord: %v", err)
	}
}

// Nop discards announcements. Used when Discord is not configured.
type Nop struct{}

func (Nop) AnnounceBest(*model.CollectionDescriptor, *model.CollectionAttempt, int) {}
