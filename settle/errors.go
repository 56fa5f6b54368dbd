package settle

import "errors"

var (
	// ErrCampaignInactive rejects draws outside the campaign's window or
	// against a flagged-off campaign. Never retried automatically.
	ErrCampaignInactive = errors.New("settle: campaign not active")

	// ErrInsufficientFunds rejects a settlement before any mutation. The
	// caller may retry after topping up the balance.
	ErrInsufficientFunds = errors.New("settle: insufficient funds")

	// ErrInvalidDrawCount rejects batch sizes other than 1 or 10; price
	// tables define no other sizes.
	ErrInvalidDrawCount = errors.New("settle: draw count must be 1 or 10")

	// ErrCommitFailed wraps a storage failure during the atomic commit. The
	// store guarantees full rollback, so the request is safe to retry: no
	// funds were moved and nothing was granted.
	ErrCommitFailed = errors.New("settle: settlement commit failed")
)
