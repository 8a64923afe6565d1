package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"metamarket/contexts/finance-core/marketplace-program/ports"
)

var ErrDuplicateConsumer = errors.New("consumer group already subscribed to topic")

const groupBuffer = 128

// Bus fans program events out to consumer groups. Each group sees every event
// on its topic once; a group whose buffer is full loses the event and the drop
// is counted. Brokers are recorded for the startup log only.
type Bus struct {
	mu      sync.RWMutex
	brokers []string
	groups  map[string]map[string]chan ports.EventEnvelope
	logger  *slog.Logger

	delivered atomic.Uint64
	dropped   atomic.Uint64
}

// Stats is a point-in-time view of bus delivery counters.
type Stats struct {
	Delivered uint64
	Dropped   uint64
}

func NewBus(brokers []string, logger *slog.Logger) *Bus {
	return &Bus{
		brokers: append([]string(nil), brokers...),
		groups:  make(map[string]map[string]chan ports.EventEnvelope),
		logger:  logger,
	}
}

func (b *Bus) Brokers() []string {
	return append([]string(nil), b.brokers...)
}

func (b *Bus) Stats() Stats {
	return Stats{Delivered: b.delivered.Load(), Dropped: b.dropped.Load()}
}

func (b *Bus) Publish(ctx context.Context, topic string, event ports.EventEnvelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.RLock()
	targets := make(map[string]chan ports.EventEnvelope, len(b.groups[topic]))
	for group, ch := range b.groups[topic] {
		targets[group] = ch
	}
	b.mu.RUnlock()

	for group, ch := range targets {
		select {
		case ch <- event:
			b.delivered.Add(1)
		default:
			b.dropped.Add(1)
			b.log(slog.LevelWarn, "consumer group buffer full, event dropped",
				"event", "bus_publish_dropped",
				"topic", topic,
				"consumer_group", group,
				"event_id", event.EventID,
			)
		}
	}

	b.log(slog.LevelDebug, "event published",
		"event", "bus_publish",
		"topic", topic,
		"groups", len(targets),
		"event_id", event.EventID,
		"event_type", event.EventType,
		"partition_key", event.PartitionKey,
	)
	return nil
}

// Subscribe starts a consumer for group on topic. Events are handled in
// publish order; the consumer stops when ctx is done.
func (b *Bus) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, ports.EventEnvelope) error,
) error {
	ch := make(chan ports.EventEnvelope, groupBuffer)

	b.mu.Lock()
	if _, exists := b.groups[topic][consumerGroup]; exists {
		b.mu.Unlock()
		return fmt.Errorf("%w: %s on %s", ErrDuplicateConsumer, consumerGroup, topic)
	}
	if b.groups[topic] == nil {
		b.groups[topic] = make(map[string]chan ports.EventEnvelope)
	}
	b.groups[topic][consumerGroup] = ch
	b.mu.Unlock()

	go func() {
		defer b.unsubscribe(topic, consumerGroup)
		for {
			select {
			case <-ctx.Done():
				return
			case event := <-ch:
				if err := handler(ctx, event); err != nil {
					b.log(slog.LevelError, "consumer handler failed",
						"event", "bus_consume_failed",
						"topic", topic,
						"consumer_group", consumerGroup,
						"event_id", event.EventID,
						"event_type", event.EventType,
						"error", err.Error(),
					)
				}
			}
		}
	}()
	return nil
}

func (b *Bus) unsubscribe(topic string, consumerGroup string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.groups[topic], consumerGroup)
	if len(b.groups[topic]) == 0 {
		delete(b.groups, topic)
	}
}

func (b *Bus) log(level slog.Level, msg string, args ...any) {
	if b.logger == nil {
		return
	}
	args = append(args, "module", "internal/platform/messaging", "layer", "platform")
	b.logger.Log(context.Background(), level, msg, args...)
}
