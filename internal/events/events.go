// Package events publishes domain events (discount redemptions, partner
// feedback) for downstream consumers such as reporting.
package events

import (
	"context"
	"time"
)

// DiscountApplied is emitted after a partner redeems a one-time code.
type DiscountApplied struct {
	OTCCode          string    `json:"otcCode"`
	TouristCode      string    `json:"touristIqCode"`
	PartnerCode      string    `json:"partnerCode"`
	OriginalAmount   string    `json:"originalAmount"`
	DiscountAmount   string    `json:"discountAmount"`
	RemainingPlafond string    `json:"remainingPlafond"`
	UsedAt           time.Time `json:"usedAt"`
}

// FeedbackRecorded is emitted after a tourist rates a partner.
type FeedbackRecorded struct {
	PartnerCode  string    `json:"partnerCode"`
	Rating       string    `json:"rating"`
	Percentage   float64   `json:"percentage"`
	WarningLevel int       `json:"warningLevel"`
	RecordedAt   time.Time `json:"recordedAt"`
}

type Publisher interface {
	PublishDiscountApplied(ctx context.Context, e DiscountApplied) error
	PublishFeedbackRecorded(ctx context.Context, e FeedbackRecorded) error
	Close() error
}

type noopPublisher struct{}

// NewNoopPublisher drops every event. Used when events are disabled.
func NewNoopPublisher() Publisher { return noopPublisher{} }

func (noopPublisher) PublishDiscountApplied(context.Context, DiscountApplied) error   { return nil }
func (noopPublisher) PublishFeedbackRecorded(context.Context, FeedbackRecorded) error { return nil }
func (noopPublisher) Close() error                                                    { return nil }
