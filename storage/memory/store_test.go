package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maru-games/gacha-settlement-engine/catalog"
	"github.com/maru-games/gacha-settlement-engine/gacha"
	"github.com/maru-games/gacha-settlement-engine/settle"
)

func testSettlement(accountID string, price int64, draws int) settle.Settlement {
	sessionID := uuid.New().String()
	now := time.Now()
	unit := decimal.NewFromInt(price).Div(decimal.NewFromInt(int64(draws)))
	s := settle.Settlement{
		AccountID:  accountID,
		CampaignID: "camp",
		SessionID:  sessionID,
		Price:      decimal.NewFromInt(price),
		Entry: settle.LedgerEntry{
			ID:        uuid.New().String(),
			AccountID: accountID,
			Amount:    decimal.NewFromInt(-price),
			Kind:      settle.LedgerKindDrawSettlement,
			CreatedAt: now,
		},
	}
	for i := 0; i < draws; i++ {
		s.Records = append(s.Records, settle.DrawRecord{
			ID:         uuid.New().String(),
			AccountID:  accountID,
			CampaignID: "camp",
			SessionID:  sessionID,
			Tier:       gacha.TierCommon,
			ItemID:     "wooden_sword",
			Price:      unit,
			CreatedAt:  now,
		})
	}
	return s
}

func TestApplySettlement(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	s.Credit(ctx, "acc", decimal.NewFromInt(1000))

	if err := s.ApplySettlement(ctx, testSettlement("acc", 300, 10)); err != nil {
		t.Fatal(err)
	}
	balance, _ := s.GetBalance(ctx, "acc")
	if !balance.Equal(decimal.NewFromInt(700)) {
		t.Errorf("balance %v, want 700", balance)
	}
	draws, _ := s.DrawsByAccount(ctx, "acc")
	if len(draws) != 10 {
		t.Errorf("got %d draws, want 10", len(draws))
	}
	entries, _ := s.EntriesByAccount(ctx, "acc")
	if len(entries) != 1 {
		t.Errorf("got %d entries, want 1", len(entries))
	}
	holdings, _ := s.Holdings(ctx, "acc")
	if len(holdings) != 10 {
		t.Errorf("got %d holdings, want 10", len(holdings))
	}
}

func TestApplySettlement_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	s.Credit(ctx, "acc", decimal.NewFromInt(100))

	err := s.ApplySettlement(ctx, testSettlement("acc", 300, 1))
	if !errors.Is(err, settle.ErrInsufficientFunds) {
		t.Fatalf("got %v, want ErrInsufficientFunds", err)
	}
	balance, _ := s.GetBalance(ctx, "acc")
	if !balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("balance mutated: %v", balance)
	}
	if draws, _ := s.DrawsByAccount(ctx, "acc"); len(draws) != 0 {
		t.Errorf("draws written: %d", len(draws))
	}
}

func TestApplySettlement_HookAbortsCleanly(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	s.Credit(ctx, "acc", decimal.NewFromInt(1000))
	s.SetCommitHook(func(settle.Settlement) error { return errors.New("injected") })

	if err := s.ApplySettlement(ctx, testSettlement("acc", 300, 1)); err == nil {
		t.Fatal("hook error should abort the settlement")
	}
	balance, _ := s.GetBalance(ctx, "acc")
	if !balance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("balance mutated after aborted commit: %v", balance)
	}
	if entries, _ := s.EntriesByAccount(ctx, "acc"); len(entries) != 0 {
		t.Errorf("entries written after aborted commit: %d", len(entries))
	}
}

func TestGetBalance_UnknownAccountIsZero(t *testing.T) {
	s := NewStore()
	balance, err := s.GetBalance(context.Background(), "nobody")
	if err != nil {
		t.Fatal(err)
	}
	if !balance.Equal(decimal.Zero) {
		t.Errorf("balance %v, want 0", balance)
	}
}

func TestAddCampaign_RejectsInvalid(t *testing.T) {
	s := NewStore()
	bad := catalog.Campaign{
		ID:          "bad",
		StartsAt:    time.Now(),
		EndsAt:      time.Now().Add(time.Hour),
		Active:      true,
		SinglePrice: decimal.NewFromInt(100),
		BatchPrice:  decimal.NewFromInt(900),
		Rates:       gacha.TierRates{Legendary: 0.5, Epic: 0.5, Rare: 0.5, Common: 0.5},
	}
	if err := s.AddCampaign(bad); err == nil {
		t.Fatal("campaign with rates summing to 2.0 must be rejected")
	}
	if _, err := s.GetCampaign(context.Background(), "bad"); !errors.Is(err, catalog.ErrCampaignNotFound) {
		t.Errorf("rejected campaign should not be stored: %v", err)
	}
}

func TestListItems_KeepsInsertionOrder(t *testing.T) {
	s := NewStore()
	ids := []string{"c1", "c2", "c3"}
	for _, id := range ids {
		s.AddItem(catalog.Item{ID: id, Tier: gacha.TierCommon, Weight: 1, Available: true})
	}
	s.AddItem(catalog.Item{ID: "r1", Tier: gacha.TierRare, Weight: 1, Available: true})

	items, err := s.ListItems(context.Background(), "camp", gacha.TierCommon)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	for i, id := range ids {
		if items[i].ID != id {
			t.Errorf("position %d: got %q want %q", i, items[i].ID, id)
		}
	}
}
