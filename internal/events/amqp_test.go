package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type fakeBroker struct {
	closed    bool
	failWith  error
	published map[string][]amqp.Publishing
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{published: make(map[string][]amqp.Publishing)}
}

func (b *fakeBroker) Publish(_ context.Context, queue string, msg amqp.Publishing) error {
	if b.failWith != nil {
		return b.failWith
	}
	b.published[queue] = append(b.published[queue], msg)
	return nil
}

func (b *fakeBroker) Closed() bool { return b.closed }

func (b *fakeBroker) Close() error {
	b.closed = true
	return nil
}

type fakeDialer struct {
	brokers []*fakeBroker
	err     error
	queues  []string
}

func (d *fakeDialer) dial(_ string, queues []string, _ *zap.Logger) (broker, error) {
	d.queues = queues
	if d.err != nil {
		return nil, d.err
	}
	b := newFakeBroker()
	d.brokers = append(d.brokers, b)
	return b, nil
}

func newTestPublisher(d *fakeDialer) *amqpPublisher {
	return newAMQPPublisher("amqp://test", "discount.applied", "feedback.recorded", zap.NewNop(), d.dial)
}

func TestPublishDeclaresBothQueues(t *testing.T) {
	d := &fakeDialer{}
	p := newTestPublisher(d)
	ctx := context.Background()

	if err := p.PublishDiscountApplied(ctx, DiscountApplied{OTCCode: "12345", DiscountAmount: "10.00"}); err != nil {
		t.Fatalf("PublishDiscountApplied: %v", err)
	}
	if len(d.queues) != 2 || d.queues[0] != "discount.applied" || d.queues[1] != "feedback.recorded" {
		t.Fatalf("declared queues = %v", d.queues)
	}
	msgs := d.brokers[0].published["discount.applied"]
	if len(msgs) != 1 {
		t.Fatalf("published %d messages, want 1", len(msgs))
	}
	if msgs[0].DeliveryMode != amqp.Persistent {
		t.Fatalf("DeliveryMode = %d, want persistent", msgs[0].DeliveryMode)
	}
	var got DiscountApplied
	if err := json.Unmarshal(msgs[0].Body, &got); err != nil {
		t.Fatalf("body: %v", err)
	}
	if got.OTCCode != "12345" || got.DiscountAmount != "10.00" {
		t.Fatalf("body = %+v", got)
	}
}

func TestPublishRedialsAfterConnectionLoss(t *testing.T) {
	d := &fakeDialer{}
	p := newTestPublisher(d)
	ctx := context.Background()

	if err := p.PublishFeedbackRecorded(ctx, FeedbackRecorded{PartnerCode: "TIQ-VE-PRT-1"}); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	d.brokers[0].closed = true

	if err := p.PublishFeedbackRecorded(ctx, FeedbackRecorded{PartnerCode: "TIQ-VE-PRT-1"}); err != nil {
		t.Fatalf("publish after loss: %v", err)
	}
	if len(d.brokers) != 2 {
		t.Fatalf("dialed %d times, want 2", len(d.brokers))
	}
	if n := len(d.brokers[1].published["feedback.recorded"]); n != 1 {
		t.Fatalf("new connection carried %d messages, want 1", n)
	}
}

func TestPublishRetriesOnceWhenChannelClosedMidway(t *testing.T) {
	d := &fakeDialer{}
	p := newTestPublisher(d)
	ctx := context.Background()

	if err := p.PublishDiscountApplied(ctx, DiscountApplied{OTCCode: "11111"}); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	d.brokers[0].failWith = amqp.ErrClosed

	if err := p.PublishDiscountApplied(ctx, DiscountApplied{OTCCode: "22222"}); err != nil {
		t.Fatalf("publish on closed channel: %v", err)
	}
	if len(d.brokers) != 2 {
		t.Fatalf("dialed %d times, want 2", len(d.brokers))
	}
	if !d.brokers[0].closed {
		t.Fatal("stale connection was not closed")
	}
}

func TestPublishWaitsBeforeRedialing(t *testing.T) {
	d := &fakeDialer{}
	p := newTestPublisher(d)
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }
	ctx := context.Background()

	dialErr := errors.New("connection refused")
	d.err = dialErr
	if err := p.PublishDiscountApplied(ctx, DiscountApplied{}); !errors.Is(err, dialErr) {
		t.Fatalf("err = %v, want dial error", err)
	}

	d.err = nil
	if err := p.PublishDiscountApplied(ctx, DiscountApplied{}); !errors.Is(err, ErrBrokerUnavailable) {
		t.Fatalf("err = %v, want ErrBrokerUnavailable", err)
	}
	if len(d.brokers) != 0 {
		t.Fatalf("dialed during backoff")
	}

	now = now.Add(ReconnectDelay)
	if err := p.PublishDiscountApplied(ctx, DiscountApplied{}); err != nil {
		t.Fatalf("publish after backoff: %v", err)
	}
	if len(d.brokers) != 1 {
		t.Fatalf("dialed %d times, want 1", len(d.brokers))
	}
}

func TestCloseReleasesConnection(t *testing.T) {
	d := &fakeDialer{}
	p := newTestPublisher(d)
	if err := p.PublishDiscountApplied(context.Background(), DiscountApplied{}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !d.brokers[0].closed {
		t.Fatal("connection still open")
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
