package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisRelay publishes events to a redis channel and replays the channel into a local publisher,
// so every API instance sees every order event.
type RedisRelay struct {
	rdb     *redis.Client
	channel string
	local   Publisher
	log     logrus.FieldLogger
}

func NewRedisRelay(rdb *redis.Client, channel string, local Publisher, log logrus.FieldLogger) *RedisRelay {
	return &RedisRelay{rdb: rdb, channel: channel, local: local, log: log}
}

func (r *RedisRelay) Publish(e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		r.log.WithError(err).Warn("marshal order event")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.rdb.Publish(ctx, r.channel, data).Err(); err != nil {
		r.log.WithError(err).Warn("relay order event, delivering locally")
		r.local.Publish(e)
	}
}

// Run subscribes to the channel until ctx is cancelled.
func (r *RedisRelay) Run(ctx context.Context) error {
	sub := r.rdb.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.deliver(msg.Payload)
		}
	}
}

func (r *RedisRelay) deliver(payload string) {
	var e Event
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		r.log.WithError(err).Warn("decode relayed order event")
		return
	}
	r.local.Publish(e)
}
