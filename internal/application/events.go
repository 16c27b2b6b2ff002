package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	EventUserVerified   = "user.verified"
	EventProfileUpdated = "profile.updated"
)

// ProfileEvent tells the indexer that a user's public view may have changed.
type ProfileEvent struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// publish is best effort; failures are logged and not retried.
func (s *Service) publish(ctx context.Context, typ, userID string) {
	if s.Events == nil {
		return
	}
	ev := ProfileEvent{Type: typ, UserID: userID, OccurredAt: s.now().UTC()}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := s.Events.PublishJSON(c, ev); err != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{"user_id": userID, "type": typ}).Warn("publish profile event failed")
	}
}
