package settle

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/maru-games/gacha-settlement-engine/gacha"
)

// LedgerKindDrawSettlement tags ledger entries written by draw settlements.
const LedgerKindDrawSettlement = "draw_settlement"

// ResolvedReward is one draw's outcome as returned to the caller.
type ResolvedReward struct {
	SessionID string     `json:"sessionId"`
	Tier      gacha.Tier `json:"tier"`
	ItemID    string     `json:"itemId"`
	ItemName  string     `json:"itemName,omitempty"`
}

// DrawRecord is the immutable audit row for one individual draw. Records are
// never edited or deleted once written.
type DrawRecord struct {
	ID         string          `json:"id"`
	AccountID  string          `json:"accountId"`
	CampaignID string          `json:"campaignId"`
	SessionID  string          `json:"sessionId"`
	Tier       gacha.Tier      `json:"tier"`
	ItemID     string          `json:"itemId"`
	Price      decimal.Decimal `json:"price"` // this draw's share of the batch price
	CreatedAt  time.Time       `json:"createdAt"`
}

// LedgerEntry is the single balance-movement row for one settlement. A batch
// of N draws writes exactly one entry covering the full batch price.
type LedgerEntry struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"accountId"`
	Amount      decimal.Decimal `json:"amount"` // signed; negative for debits
	Kind        string          `json:"kind"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Settlement is the full write set for one atomic commit: the balance debit,
// the per-draw records, the item grants implied by them, and the one ledger
// entry. The store applies all of it or none of it.
type Settlement struct {
	AccountID  string
	CampaignID string
	SessionID  string
	Price      decimal.Decimal
	Records    []DrawRecord
	Entry      LedgerEntry
}

// SettlementStore is the transactional storage surface the coordinator
// settles against. ApplySettlement must serialize the balance check-and-debit
// per account (row lock or equivalent) so two concurrent settlements can
// never both pass the funds check against a stale balance, and must commit
// the whole write set atomically or roll it back entirely.
type SettlementStore interface {
	GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error)
	ApplySettlement(ctx context.Context, s Settlement) error

	DrawsByAccount(ctx context.Context, accountID string) ([]DrawRecord, error)
	DrawsBySession(ctx context.Context, sessionID string) ([]DrawRecord, error)
	EntriesByAccount(ctx context.Context, accountID string) ([]LedgerEntry, error)
	Holdings(ctx context.Context, accountID string) ([]string, error)
}
