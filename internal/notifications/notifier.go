// Package notifications delivers moderation events to affected users in real
// time over Redis pub/sub and WebSocket connections.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"runtime/debug"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Event types published to user channels.
const (
	EventContentHidden = "content_hidden"
	EventUserBlocked   = "user_blocked"
)

// Event is the envelope for every notification delivered to a client.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// ContentHiddenPayload tells an author one of their items was hidden by
// moderation. ContentType is "post" or "comment".
type ContentHiddenPayload struct {
	ContentType string `json:"content_type"`
	ContentID   uint   `json:"content_id"`
}

// UserBlockedPayload tells a user a moderator blocked them within a school
// subtree.
type UserBlockedPayload struct {
	SchoolID uint `json:"school_id"`
}

// Notifier publishes notification events into Redis channels. A nil Redis
// client turns every publish into a no-op, so callers never need to guard.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a Notifier using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishUser sends a raw payload to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// PublishBroadcast sends a payload to all connected users.
func (n *Notifier) PublishBroadcast(ctx context.Context, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, "notifications:broadcast", payload).Err()
}

func (n *Notifier) publishEvent(ctx context.Context, userID uint, eventType string, payload interface{}) error {
	data, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}
	return n.PublishUser(ctx, userID, string(data))
}

// PublishContentHidden notifies the author that moderation hid their content.
func (n *Notifier) PublishContentHidden(ctx context.Context, userID uint, contentType string, contentID uint) error {
	return n.publishEvent(ctx, userID, EventContentHidden, ContentHiddenPayload{
		ContentType: contentType,
		ContentID:   contentID,
	})
}

// PublishUserBlocked notifies a user that a moderator blocked them in a
// school subtree.
func (n *Notifier) PublishUserBlocked(ctx context.Context, userID uint, schoolID uint) error {
	return n.publishEvent(ctx, userID, EventUserBlocked, UserBlockedPayload{SchoolID: schoolID})
}

// StartPatternSubscriber subscribes to user channels plus the broadcast
// channel and calls onMessage for each incoming message. Stops when ctx is
// canceled.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "notifications:user:*", "notifications:broadcast")
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
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in PatternSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return "notifications:user:" + strconv.FormatUint(uint64(userID), 10)
}
