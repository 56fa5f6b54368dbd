package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// RewardRef identifies one granted reward inside a settlement event.
type RewardRef struct {
	Tier   string `json:"tier"`
	ItemID string `json:"item_id"`
}

// SettlementCompleted is emitted after a settlement commits. Consumers
// (notifications, analytics) must treat it as at-most-once: publishing is
// best-effort and never rolls back a committed settlement.
type SettlementCompleted struct {
	SessionID  string          `json:"session_id"`
	AccountID  string          `json:"account_id"`
	CampaignID string          `json:"campaign_id"`
	Price      decimal.Decimal `json:"price"`
	Rewards    []RewardRef     `json:"rewards"`
	SettledAt  time.Time       `json:"settled_at"`
}

// Publisher delivers settlement events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event SettlementCompleted) error
}

// NopPublisher drops all events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, SettlementCompleted) error { return nil }
