// Package dispatch hands action plans and briefings to downstream delivery
// systems. Delivery itself happens elsewhere.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ManuGH/fieldpulse/internal/adm"
	"github.com/ManuGH/fieldpulse/internal/playbook"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Message kinds carried in the "kind" header.
const (
	KindActionPlan = "action_plan"
	KindBriefing   = "briefing"
)

// Publisher hands results to a delivery system.
type Publisher interface {
	PublishPlan(ctx context.Context, plan playbook.ActionPlan) error
	PublishBriefing(ctx context.Context, b adm.Briefing) error
	Close() error
}

// NopPublisher drops everything. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishPlan(context.Context, playbook.ActionPlan) error {
	return nil
}

func (NopPublisher) PublishBriefing(context.Context, adm.Briefing) error {
	return nil
}

func (NopPublisher) Close() error {
	return nil
}

// messageWriter is the subset of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConfig configures the Kafka hand-off.
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
}

// KafkaPublisher writes one message per plan or briefing. Plans are keyed by
// agent ID and briefings by coordinator ID so each key stays ordered.
type KafkaPublisher struct {
	writer messageWriter
	now    func() time.Time
}

// NewKafkaPublisher creates a publisher for cfg. Connections are lazy.
func NewKafkaPublisher(cfg KafkaConfig) *KafkaPublisher {
	return newKafkaPublisher(&kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: kafka.RequireAll,
	})
}

func newKafkaPublisher(w messageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w, now: time.Now}
}

func (p *KafkaPublisher) PublishPlan(ctx context.Context, plan playbook.ActionPlan) error {
	if len(plan.Actions) == 0 {
		return nil
	}
	return p.publish(ctx, KindActionPlan, plan.AgentID, plan)
}

func (p *KafkaPublisher) PublishBriefing(ctx context.Context, b adm.Briefing) error {
	return p.publish(ctx, KindBriefing, b.CoordinatorID, b)
}

func (p *KafkaPublisher) publish(ctx context.Context, kind, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}
	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  p.now(),
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(kind)},
			{Key: "message_id", Value: []byte(uuid.NewString())},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s for %s: %w", kind, key, err)
	}
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
