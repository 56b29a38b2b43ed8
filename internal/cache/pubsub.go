package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/constants"
	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var _ storage.ResponseCache = (*BroadcastCache)(nil)

// invalidation is the pub/sub payload. An empty Key purges everything.
type invalidation struct {
	Origin string `json:"origin"`
	Key    string `json:"key,omitempty"`
}

// BroadcastCache wraps a per-replica cache so that Delete and Purge reach
// every replica over Redis pub/sub. Reads and writes stay local.
type BroadcastCache struct {
	storage.ResponseCache

	client  redis.UniversalClient
	channel string
	origin  string
	logger  *logrus.Logger
}

func NewBroadcastCache(local storage.ResponseCache, client redis.UniversalClient, logger *logrus.Logger) *BroadcastCache {
	if logger == nil {
		logger = logrus.New()
	}
	host, _ := os.Hostname()
	return &BroadcastCache{
		ResponseCache: local,
		client:        client,
		channel:       constants.RedisChannelInvalidate,
		origin:        fmt.Sprintf("%s-%d-%d", host, os.Getpid(), time.Now().UnixNano()),
		logger:        logger,
	}
}

func (b *BroadcastCache) Delete(ctx context.Context, key string) error {
	if err := b.ResponseCache.Delete(ctx, key); err != nil {
		return err
	}
	return b.publish(ctx, invalidation{Origin: b.origin, Key: key})
}

func (b *BroadcastCache) Purge(ctx context.Context) error {
	if err := b.ResponseCache.Purge(ctx); err != nil {
		return err
	}
	return b.publish(ctx, invalidation{Origin: b.origin})
}

func (b *BroadcastCache) Ping(ctx context.Context) error {
	if err := b.ResponseCache.Ping(ctx); err != nil {
		return err
	}
	return b.client.Ping(ctx).Err()
}

func (b *BroadcastCache) publish(ctx context.Context, msg invalidation) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("publish invalidation: %w", err)
	}
	return nil
}

// Listen subscribes to invalidations from other replicas and applies them to
// the local cache until ctx is done or stop is called. It returns once the
// subscription is confirmed.
func (b *BroadcastCache) Listen(ctx context.Context) (stop func(), err error) {
	pubsub := b.client.Subscribe(ctx, b.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	b.logger.WithField("channel", b.channel).Info("listening for cache invalidations")

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				b.apply(ctx, msg.Payload)
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}, nil
}

func (b *BroadcastCache) apply(ctx context.Context, payload string) {
	var msg invalidation
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		b.logger.WithError(err).Warn("dropping malformed cache invalidation")
		return
	}
	if msg.Origin == b.origin {
		return
	}

	log := b.logger.WithField("origin", msg.Origin)
	var err error
	if msg.Key == "" {
		err = b.ResponseCache.Purge(ctx)
	} else {
		err = b.ResponseCache.Delete(ctx, msg.Key)
	}
	if err != nil {
		log.WithError(err).Warn("failed to apply cache invalidation")
		return
	}
	log.WithField("key", msg.Key).Debug("applied cache invalidation")
}
