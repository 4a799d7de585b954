package notify

import (
	"context"
	"encoding/json"
	"pallet-queue-service/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Message published on the station channel.
type Message struct {
	Kind   string            `json:"kind"` // "counts" or "sync"
	Counts *domain.Counts    `json:"counts,omitempty"`
	Event  *domain.SyncEvent `json:"event,omitempty"`
}

// RedisNotifier publishes notifications on a Redis pub/sub channel so that
// dashboards and other terminals can follow the station.
// Publish failures are logged and never reach the caller.
type RedisNotifier struct {
	rdb     *redis.Client
	channel string
	log     logrus.FieldLogger
}

func NewRedisNotifier(rdb *redis.Client, channel string, log logrus.FieldLogger) *RedisNotifier {
	return &RedisNotifier{rdb: rdb, channel: channel, log: log}
}

func (n *RedisNotifier) CountsChanged(ctx context.Context, c domain.Counts) {
	n.publish(ctx, Message{Kind: "counts", Counts: &c})
}

func (n *RedisNotifier) Notify(ctx context.Context, ev domain.SyncEvent) {
	n.publish(ctx, Message{Kind: "sync", Event: &ev})
}

func (n *RedisNotifier) publish(ctx context.Context, m Message) {
	b, err := json.Marshal(m)
	if err != nil {
		n.log.WithError(err).Warn("encode notification")
		return
	}
	if err := n.rdb.Publish(ctx, n.channel, b).Err(); err != nil {
		n.log.WithError(err).WithField("channel", n.channel).Warn("publish notification")
	}
}
