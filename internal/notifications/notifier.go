// Package notifications publishes blog change events over Redis pub/sub.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"bloglist/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// BlogEventsChannel carries every blog event.
const BlogEventsChannel = "blogs:events"

// Event types.
const (
	BlogCreated   = "blog_created"
	BlogUpdated   = "blog_updated"
	BlogCommented = "blog_commented"
	BlogDeleted   = "blog_deleted"
)

// BlogEvent is the JSON payload published for a blog mutation.
type BlogEvent struct {
	Type   string    `json:"type"`
	BlogID uint      `json:"blog_id"`
	UserID uint      `json:"user_id,omitempty"`
	At     time.Time `json:"at"`
}

// UserChannel is the per-owner channel that mirrors events on that user's blogs.
func UserChannel(userID uint) string {
	return fmt.Sprintf("notifications:user:%d", userID)
}

// Notifier provides helpers to publish notifications into Redis channels. A Notifier
// with a nil client drops every event.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishBlogEvent publishes ev on BlogEventsChannel and, when the owner is known, on
// the owner's channel.
func (n *Notifier) PublishBlogEvent(ctx context.Context, ev BlogEvent) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	pipe := n.rdb.Pipeline()
	pipe.Publish(ctx, BlogEventsChannel, payload)
	if ev.UserID != 0 {
		pipe.Publish(ctx, UserChannel(ev.UserID), payload)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// StartBlogSubscriber calls onEvent for every event on BlogEventsChannel until ctx is
// cancelled. Malformed payloads are logged and skipped.
func (n *Notifier) StartBlogSubscriber(ctx context.Context, onEvent func(BlogEvent)) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, BlogEventsChannel)
	// Wait for the subscription to be confirmed so no event published afterwards is missed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return err
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev BlogEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					middleware.Logger.Warn("dropping malformed blog event", slog.String("error", err.Error()))
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in blog event subscriber",
								slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
						}
					}()
					onEvent(ev)
				}()
			}
		}
	}()

	return nil
}
