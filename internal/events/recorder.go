package events

import (
	"context"
	"sync"
)

// Recorder keeps published events in memory. Used by tests.
type Recorder struct {
	mu        sync.Mutex
	Discounts []DiscountApplied
	Feedback  []FeedbackRecorded
}

func (r *Recorder) PublishDiscountApplied(_ context.Context, e DiscountApplied) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Discounts = append(r.Discounts, e)
	return nil
}

func (r *Recorder) PublishFeedbackRecorded(_ context.Context, e FeedbackRecorded) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Feedback = append(r.Feedback, e)
	return nil
}

func (r *Recorder) Close() error { return nil }
