// Package notification delivers best-effort push messages to users.
package notification

import (
	"context"
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/osse101/EcoRewards_Go/internal/logger"
)

// Sender delivers a message to a user. It reports success and never returns
// an error: delivery failures are the sender's to log.
type Sender interface {
	Send(ctx context.Context, userID, title, body string, data map[string]string) bool
}

// LogSender writes notifications to the log instead of delivering them
type LogSender struct{}

// Send logs the notification and reports success
func (LogSender) Send(ctx context.Context, userID, title, body string, data map[string]string) bool {
	logger.FromContext(ctx).Info(LogMsgNotificationLogged, "user_id", userID, "title", title, "body", body, "data", data)
	return true
}

var titleCaser = cases.Title(language.English)

// BadgeTitle is the headline for a newly earned badge
func BadgeTitle(badgeName string) string {
	return fmt.Sprintf("Badge Unlocked: %s", titleCaser.String(badgeName))
}

// MilestoneTitle is the headline for a completed milestone
func MilestoneTitle(label string) string {
	return fmt.Sprintf("Milestone Complete: %s", titleCaser.String(label))
}

// MilestoneBody describes the milestone reward
func MilestoneBody(bonusPoints int) string {
	return fmt.Sprintf("You earned %d bonus points.", bonusPoints)
}

// BadgeBody describes a badge award
func BadgeBody(badgeName string) string {
	return fmt.Sprintf("You earned the %s badge. Keep it up!", badgeName)
}

// ChallengeTitle is the headline sent to a contributor when a community challenge completes
const ChallengeTitle = "Community Challenge Complete"

// ChallengeBody describes the completed community goal
func ChallengeBody(goalKg float64) string {
	return fmt.Sprintf("Your community saved %.0f kg of CO2 together.", goalKg)
}
