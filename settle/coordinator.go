package settle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maru-games/gacha-settlement-engine/catalog"
	"github.com/maru-games/gacha-settlement-engine/events"
	"github.com/maru-games/gacha-settlement-engine/gacha"
)

// Coordinator orchestrates draw settlements: resolve a campaign, check
// funds, run N tier+item resolutions, then commit balance debit, draw
// records, grants and the ledger entry as one atomic unit.
type Coordinator struct {
	campaigns catalog.CampaignStore
	items     catalog.Reader
	store     SettlementStore
	publisher events.Publisher

	newRNG func() gacha.RandomSource
	now    func() time.Time
}

// New wires a coordinator against its collaborators. A nil publisher
// disables event emission.
func New(campaigns catalog.CampaignStore, items catalog.Reader, store SettlementStore, publisher events.Publisher) *Coordinator {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Coordinator{
		campaigns: campaigns,
		items:     items,
		store:     store,
		publisher: publisher,
		newRNG:    gacha.DefaultRNG,
		now:       time.Now,
	}
}

// SetRandom overrides the per-settlement random source factory. Tests and
// simulations inject seeded sources for reproducible outcomes.
func (c *Coordinator) SetRandom(f func() gacha.RandomSource) { c.newRNG = f }

// SetClock overrides the time source used for activation checks and record
// timestamps.
func (c *Coordinator) SetClock(now func() time.Time) { c.now = now }

// DrawSingle settles one draw and returns its resolved reward.
func (c *Coordinator) DrawSingle(ctx context.Context, accountID, campaignID string) (ResolvedReward, error) {
	rewards, err := c.settle(ctx, accountID, campaignID, 1)
	if err != nil {
		return ResolvedReward{}, err
	}
	return rewards[0], nil
}

// DrawBatch settles a multi-draw request. Only count == 10 is priced.
func (c *Coordinator) DrawBatch(ctx context.Context, accountID, campaignID string, count int) ([]ResolvedReward, error) {
	if count != 10 {
		return nil, ErrInvalidDrawCount
	}
	return c.settle(ctx, accountID, campaignID, count)
}

func (c *Coordinator) settle(ctx context.Context, accountID, campaignID string, drawCount int) ([]ResolvedReward, error) {
	if drawCount != 1 && drawCount != 10 {
		return nil, ErrInvalidDrawCount
	}
	if accountID == "" {
		return nil, fmt.Errorf("settle: account id is required")
	}

	camp, err := c.campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	now := c.now()
	if !camp.ActiveAt(now) {
		return nil, ErrCampaignInactive
	}

	price := camp.SinglePrice
	if drawCount == 10 {
		price = camp.BatchPrice
	}

	// Early funds check: reject before doing any resolution work. The
	// authoritative check happens again inside ApplySettlement under the
	// account lock.
	balance, err := c.store.GetBalance(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if balance.LessThan(price) {
		return nil, ErrInsufficientFunds
	}

	boosts, err := c.items.FeaturedMultipliers(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	sessionID := uuid.New().String()
	rng := c.newRNG()
	unitPrice := price.Div(decimal.NewFromInt(int64(drawCount)))

	rewards := make([]ResolvedReward, 0, drawCount)
	records := make([]DrawRecord, 0, drawCount)
	for i := 0; i < drawCount; i++ {
		// Two independent uniform draws per resolution: one for the tier,
		// one for the item within it. Any resolution failure aborts the
		// whole batch before a single write happens.
		tier := gacha.ResolveTier(camp.Rates, rng.Float64())
		items, err := c.items.ListItems(ctx, campaignID, tier)
		if err != nil {
			return nil, err
		}
		pool := make([]gacha.PoolItem, len(items))
		for j, it := range items {
			pool[j] = gacha.PoolItem{ID: it.ID, Weight: it.Weight, Available: it.Available}
		}
		picked, err := gacha.ResolveItem(pool, boosts, rng.Float64())
		if err != nil {
			return nil, err
		}

		rewards = append(rewards, ResolvedReward{
			SessionID: sessionID,
			Tier:      tier,
			ItemID:    picked.ID,
			ItemName:  itemName(items, picked.ID),
		})
		records = append(records, DrawRecord{
			ID:         uuid.New().String(),
			AccountID:  accountID,
			CampaignID: campaignID,
			SessionID:  sessionID,
			Tier:       tier,
			ItemID:     picked.ID,
			Price:      unitPrice,
			CreatedAt:  now,
		})
	}

	// Nothing has been written yet, so honoring cancellation here is free.
	// Past this point the commit runs to completion (commit or rollback).
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := Settlement{
		AccountID:  accountID,
		CampaignID: campaignID,
		SessionID:  sessionID,
		Price:      price,
		Records:    records,
		Entry: LedgerEntry{
			ID:          uuid.New().String(),
			AccountID:   accountID,
			Amount:      price.Neg(),
			Kind:        LedgerKindDrawSettlement,
			Description: fmt.Sprintf("%d draw(s) on campaign %s", drawCount, campaignID),
			CreatedAt:   now,
		},
	}
	if err := c.store.ApplySettlement(ctx, s); err != nil {
		if errors.Is(err, ErrInsufficientFunds) {
			return nil, ErrInsufficientFunds
		}
		return nil, fmt.Errorf("%w: %v", ErrCommitFailed, err)
	}

	c.publish(s, rewards)
	return rewards, nil
}

// publish emits the settlement event after commit. Delivery is best-effort:
// a committed settlement is never undone because a broker was unreachable.
func (c *Coordinator) publish(s Settlement, rewards []ResolvedReward) {
	refs := make([]events.RewardRef, len(rewards))
	for i, r := range rewards {
		refs[i] = events.RewardRef{Tier: string(r.Tier), ItemID: r.ItemID}
	}
	event := events.SettlementCompleted{
		SessionID:  s.SessionID,
		AccountID:  s.AccountID,
		CampaignID: s.CampaignID,
		Price:      s.Price,
		Rewards:    refs,
		SettledAt:  s.Entry.CreatedAt,
	}
	if err := c.publisher.Publish(context.Background(), event); err != nil {
		logger.Errorf("settle: publish settlement %s: %v", s.SessionID, err)
	}
}

func itemName(items []catalog.Item, id string) string {
	for _, it := range items {
		if it.ID == id {
			return it.Name
		}
	}
	return ""
}
