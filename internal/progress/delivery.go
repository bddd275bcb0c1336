package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/osse101/EcoRewards_Go/internal/domain"
	"github.com/osse101/EcoRewards_Go/internal/event"
	"github.com/osse101/EcoRewards_Go/internal/logger"
	"github.com/osse101/EcoRewards_Go/internal/metrics"
	"github.com/osse101/EcoRewards_Go/internal/notification"
)

type notice struct {
	title string
	body  string
	data  map[string]string
}

func (e *engine) publish(ctx context.Context, evt event.Event) {
	if e.deps.Publisher == nil {
		return
	}
	e.deps.Publisher.PublishWithRetry(ctx, evt)
}

// announce publishes events for what this call changed, then delivers
// notifications and feed entries in the background. Delivery failures are
// logged and counted, never returned.
func (e *engine) announce(ctx context.Context, userID string, s *settlement, primary *domain.FeedEvent, at time.Time) {
	var notices []notice
	var entries []domain.FeedEvent
	createdAt := at.UTC().Format(time.RFC3339)

	if primary != nil {
		entry := *primary
		entry.CreatedAt = createdAt
		entries = append(entries, entry)
	}

	for _, id := range s.badges {
		name := e.deps.Badges.Name(id)
		e.publish(ctx, event.NewBadgeAwardedEvent(userID, id, at))
		notices = append(notices, notice{
			title: notification.BadgeTitle(name),
			body:  notification.BadgeBody(name),
			data:  map[string]string{"type": FeedTypeBadgeEarned, "badge_id": id},
		})
		entries = append(entries, domain.FeedEvent{
			Type:      FeedTypeBadgeEarned,
			UserID:    userID,
			Message:   fmt.Sprintf("earned the %s badge", name),
			Data:      map[string]any{"badge_id": id},
			CreatedAt: createdAt,
		})
	}

	for _, m := range s.milestones {
		e.publish(ctx, event.NewMilestoneCompletedEvent(m, at))
		notices = append(notices, notice{
			title: notification.MilestoneTitle(m.Goal.Label),
			body:  notification.MilestoneBody(m.Reward.BonusPoints),
			data:  map[string]string{"type": FeedTypeMilestoneCompleted, "milestone_type": string(m.Type), "period_key": m.PeriodKey},
		})
		entries = append(entries, domain.FeedEvent{
			Type:      FeedTypeMilestoneCompleted,
			UserID:    userID,
			Message:   fmt.Sprintf("completed the milestone %q", m.Goal.Label),
			Data:      map[string]any{"milestone_type": string(m.Type), "period_key": m.PeriodKey},
			CreatedAt: createdAt,
		})
	}

	if s.challenge != nil {
		e.publish(ctx, event.NewChallengeCompletedEvent(*s.challenge, at))
		notices = append(notices, notice{
			title: notification.ChallengeTitle,
			body:  notification.ChallengeBody(s.challenge.GoalCo2Kg),
			data:  map[string]string{"type": FeedTypeChallengeCompleted, "challenge_id": s.challenge.ID},
		})
		entries = append(entries, domain.FeedEvent{
			Type:      FeedTypeChallengeCompleted,
			UserID:    userID,
			Message:   fmt.Sprintf("pushed the community past its %.0f kg goal", s.challenge.GoalCo2Kg),
			Data:      map[string]any{"challenge_id": s.challenge.ID, "current_co2_kg": s.challenge.CurrentCo2Kg},
			CreatedAt: createdAt,
		})
	}

	if s.communityID == "" {
		entries = nil
	}
	if len(notices) == 0 && len(entries) == 0 {
		return
	}

	bgCtx := context.WithoutCancel(ctx)
	community := s.communityID
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		log := logger.FromContext(bgCtx)

		for _, n := range notices {
			if !e.deps.Notifier.Send(bgCtx, userID, n.title, n.body, n.data) {
				metrics.DeliveryFailures.WithLabelValues(metrics.ChannelNotification).Inc()
				log.Warn(LogMsgNotificationFailed, "user_id", userID, "title", n.title)
			}
		}
		for _, fe := range entries {
			if err := e.deps.Feed.Append(bgCtx, community, fe); err != nil {
				metrics.DeliveryFailures.WithLabelValues(metrics.ChannelFeed).Inc()
				log.Warn(LogMsgFeedAppendFailed, "community_id", community, "type", fe.Type, "error", err)
			}
		}
	}()
}
