package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ReconnectDelay is the minimum wait between two dial attempts after the
// broker went away.
const ReconnectDelay = 5 * time.Second

// ErrBrokerUnavailable is returned while the publisher waits to redial.
var ErrBrokerUnavailable = errors.New("rabbitmq unavailable")

// broker is one live connection and channel.
type broker interface {
	Publish(ctx context.Context, queue string, msg amqp.Publishing) error
	Closed() bool
	Close() error
}

type dialFunc func(url string, queues []string, logger *zap.Logger) (broker, error)

type amqpPublisher struct {
	mu            sync.Mutex
	url           string
	discountQueue string
	feedbackQueue string
	logger        *zap.Logger
	dial          dialFunc
	now           func() time.Time

	b        broker
	nextDial time.Time
}

// NewAMQPPublisher dials the broker and declares both queues as durable.
// A lost connection is redialed on the next publish.
func NewAMQPPublisher(url, discountQueue, feedbackQueue string, logger *zap.Logger) (Publisher, error) {
	p := newAMQPPublisher(url, discountQueue, feedbackQueue, logger, dialBroker)
	b, err := p.dial(url, p.queues(), logger)
	if err != nil {
		return nil, err
	}
	p.b = b
	return p, nil
}

func newAMQPPublisher(url, discountQueue, feedbackQueue string, logger *zap.Logger, dial dialFunc) *amqpPublisher {
	return &amqpPublisher{
		url:           url,
		discountQueue: discountQueue,
		feedbackQueue: feedbackQueue,
		logger:        logger,
		dial:          dial,
		now:           time.Now,
	}
}

func (p *amqpPublisher) queues() []string {
	return []string{p.discountQueue, p.feedbackQueue}
}

func (p *amqpPublisher) PublishDiscountApplied(ctx context.Context, e DiscountApplied) error {
	return p.publish(ctx, p.discountQueue, e)
}

func (p *amqpPublisher) PublishFeedbackRecorded(ctx context.Context, e FeedbackRecorded) error {
	return p.publish(ctx, p.feedbackQueue, e)
}

func (p *amqpPublisher) publish(ctx context.Context, queue string, event interface{}) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	// amqp channels are not safe for concurrent publishing.
	p.mu.Lock()
	defer p.mu.Unlock()
	for attempt := 0; ; attempt++ {
		if err := p.ensureBroker(); err != nil {
			return err
		}
		err := p.b.Publish(ctx, queue, msg)
		if err == nil || !errors.Is(err, amqp.ErrClosed) || attempt > 0 {
			return err
		}
		p.drop()
	}
}

// ensureBroker redials when the current connection is gone. Must hold p.mu.
func (p *amqpPublisher) ensureBroker() error {
	if p.b != nil && !p.b.Closed() {
		return nil
	}
	p.drop()
	if now := p.now(); now.Before(p.nextDial) {
		return ErrBrokerUnavailable
	}
	b, err := p.dial(p.url, p.queues(), p.logger)
	if err != nil {
		p.nextDial = p.now().Add(ReconnectDelay)
		return fmt.Errorf("reconnect rabbitmq: %w", err)
	}
	p.logger.Info("rabbitmq reconnected")
	p.b = b
	return nil
}

func (p *amqpPublisher) drop() {
	if p.b != nil {
		_ = p.b.Close()
		p.b = nil
	}
}

func (p *amqpPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.b == nil {
		return nil
	}
	err := p.b.Close()
	p.b = nil
	return err
}

type amqpBroker struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func dialBroker(url string, queues []string, logger *zap.Logger) (broker, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	for _, q := range queues {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, fmt.Errorf("declare queue %s: %w", q, err)
		}
	}

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	go func() {
		// nil on a clean Close
		if reason, ok := <-closed; ok && reason != nil {
			logger.Warn("rabbitmq connection lost", zap.Int("code", reason.Code), zap.String("reason", reason.Reason))
		}
	}()
	return &amqpBroker{conn: conn, ch: ch}, nil
}

func (b *amqpBroker) Publish(ctx context.Context, queue string, msg amqp.Publishing) error {
	return b.ch.PublishWithContext(ctx, "", queue, false, false, msg)
}

func (b *amqpBroker) Closed() bool {
	return b.conn.IsClosed() || b.ch.IsClosed()
}

func (b *amqpBroker) Close() error {
	_ = b.ch.Close()
	return b.conn.Close()
}
