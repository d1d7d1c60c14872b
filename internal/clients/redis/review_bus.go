package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/cbpricey/Motion-Industries/internal/pkg/logger"
)

// ReviewEvent is the payload published after every review transition so
// downstream consumers (retraining jobs, dashboards) can react without
// polling.
type ReviewEvent struct {
	ProductID     string    `json:"product_id"`
	Action        string    `json:"action"`
	FromStatus    string    `json:"from_status"`
	ToStatus      string    `json:"to_status"`
	ReviewerEmail string    `json:"reviewer_email"`
	ReviewerRole  string    `json:"reviewer_role"`
	Override      bool      `json:"override"`
	Timestamp     time.Time `json:"timestamp"`
}

type ReviewBus interface {
	Publish(ctx context.Context, event ReviewEvent) error
	Subscribe(ctx context.Context, onEvent func(event ReviewEvent)) error
	Close() error
}

type reviewBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewReviewBus(log *logger.Logger) (ReviewBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ch := strings.TrimSpace(os.Getenv("REDIS_CHANNEL"))
	if ch == "" {
		ch = "review-events"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &reviewBus{
		log:     log.With("service", "RedisReviewBus"),
		rdb:     rdb,
		channel: ch,
	}, nil
}

func (b *reviewBus) Publish(ctx context.Context, event ReviewEvent) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis review bus not initialized")
	}
	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *reviewBus) Subscribe(ctx context.Context, onEvent func(event ReviewEvent)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis review bus not initialized")
	}
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)

	// ensures subscription actually started
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				var event ReviewEvent
				if err := json.Unmarshal([]byte(m.Payload), &event); err != nil {
					b.log.Warn("bad redis review payload", "error", err)
					continue
				}
				onEvent(event)
			}
		}
	}()

	return nil
}

func (b *reviewBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
