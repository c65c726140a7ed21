package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/quizgen/quizgen-backend/internal/config"
	"github.com/quizgen/quizgen-backend/internal/model"
)

// DialogPublisher fans terminal generation errors out to every socket
// watching a session, across server instances.
type DialogPublisher struct {
	rdb *redis.Client
}

func NewDialogPublisher(rdb *redis.Client) *DialogPublisher {
	return &DialogPublisher{rdb: rdb}
}

func (p *DialogPublisher) Notify(ctx context.Context, sessionID uuid.UUID, d model.Dialog) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, config.CacheKey.SessionDialogChannel(sessionID.String()), raw).Err()
}

// Subscribe streams dialogs published for sessionID until stop is called
// or ctx is done.
func (p *DialogPublisher) Subscribe(ctx context.Context, sessionID uuid.UUID) (<-chan model.Dialog, func() error) {
	sub := p.rdb.Subscribe(ctx, config.CacheKey.SessionDialogChannel(sessionID.String()))
	out := make(chan model.Dialog)

	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var d model.Dialog
			if err := json.Unmarshal([]byte(msg.Payload), &d); err != nil {
				continue
			}
			select {
			case out <- d:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, sub.Close
}
