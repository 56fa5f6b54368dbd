// Package memory is an in-memory storage backend. It backs local runs and
// tests, and mirrors the transactional guarantees the postgres backend gets
// from row locks: per-account serialization of the balance check-and-debit
// and all-or-nothing settlement application.
package memory

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/maru-games/gacha-settlement-engine/catalog"
	"github.com/maru-games/gacha-settlement-engine/gacha"
	"github.com/maru-games/gacha-settlement-engine/settle"
)

// Store keeps all engine state in maps and slices. Safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	campaigns map[string]catalog.Campaign
	items     []catalog.Item // insertion order; selection depends on it
	featured  map[string]map[string]float64
	balances  map[string]decimal.Decimal
	draws     []settle.DrawRecord
	entries   []settle.LedgerEntry
	holdings  map[string][]string

	// accountMu serializes the check-then-debit sequence per account, the
	// same role a row lock plays in the postgres backend.
	accountMuMu sync.Mutex
	accountMu   map[string]*sync.Mutex

	commitHook func(settle.Settlement) error
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{
		campaigns: make(map[string]catalog.Campaign),
		featured:  make(map[string]map[string]float64),
		balances:  make(map[string]decimal.Decimal),
		holdings:  make(map[string][]string),
		accountMu: make(map[string]*sync.Mutex),
	}
}

// SetCommitHook installs a hook run inside ApplySettlement after the funds
// check and before any mutation. A hook error aborts the settlement with no
// state change; tests use this to simulate storage transaction failure.
func (s *Store) SetCommitHook(hook func(settle.Settlement) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitHook = hook
}

// --- catalog administration (seeding) ---

// AddCampaign validates and stores a campaign. Invalid campaigns (rate sum,
// prices, window) are rejected so they can never be drawn against.
func (s *Store) AddCampaign(c catalog.Campaign) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.campaigns[c.ID] = c
	return nil
}

// AddItem appends an item to the catalog. Insertion order is the selection
// walk order.
func (s *Store) AddItem(it catalog.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, it)
}

// SetFeatured records a campaign-scoped rate boost for an item.
func (s *Store) SetFeatured(campaignID, itemID string, multiplier float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.featured[campaignID] == nil {
		s.featured[campaignID] = make(map[string]float64)
	}
	s.featured[campaignID][itemID] = multiplier
}

// ApplySeed loads a parsed catalog seed into the store.
func (s *Store) ApplySeed(seed *catalog.Seed) error {
	for _, c := range seed.Campaigns {
		if err := s.AddCampaign(c); err != nil {
			return err
		}
	}
	for _, it := range seed.Items {
		s.AddItem(it)
	}
	for campaignID, boosts := range seed.Featured {
		for itemID, mult := range boosts {
			s.SetFeatured(campaignID, itemID, mult)
		}
	}
	return nil
}

// Credit adds funds to an account, creating it if needed.
func (s *Store) Credit(ctx context.Context, accountID string, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[accountID] = s.balances[accountID].Add(amount)
	return nil
}

// --- catalog.CampaignStore / catalog.Reader ---

func (s *Store) GetCampaign(ctx context.Context, id string) (catalog.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.campaigns[id]
	if !ok {
		return catalog.Campaign{}, catalog.ErrCampaignNotFound
	}
	return c, nil
}

func (s *Store) ListItems(ctx context.Context, campaignID string, tier gacha.Tier) ([]catalog.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []catalog.Item
	for _, it := range s.items {
		if it.Tier == tier {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *Store) FeaturedMultipliers(ctx context.Context, campaignID string) (map[string]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]float64, len(s.featured[campaignID]))
	for id, m := range s.featured[campaignID] {
		out[id] = m
	}
	return out, nil
}

// --- settle.SettlementStore ---

func (s *Store) GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances[accountID], nil
}

func (s *Store) lockAccount(accountID string) *sync.Mutex {
	s.accountMuMu.Lock()
	defer s.accountMuMu.Unlock()
	mu, ok := s.accountMu[accountID]
	if !ok {
		mu = &sync.Mutex{}
		s.accountMu[accountID] = mu
	}
	return mu
}

// ApplySettlement re-checks funds under the account lock, then applies the
// debit, draw records, grants and ledger entry together. Any failure before
// the mutation block leaves the store untouched.
func (s *Store) ApplySettlement(ctx context.Context, st settle.Settlement) error {
	mu := s.lockAccount(st.AccountID)
	mu.Lock()
	defer mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.balances[st.AccountID].LessThan(st.Price) {
		return settle.ErrInsufficientFunds
	}
	if s.commitHook != nil {
		if err := s.commitHook(st); err != nil {
			return err
		}
	}

	s.balances[st.AccountID] = s.balances[st.AccountID].Sub(st.Price)
	s.draws = append(s.draws, st.Records...)
	for _, r := range st.Records {
		s.holdings[st.AccountID] = append(s.holdings[st.AccountID], r.ItemID)
	}
	s.entries = append(s.entries, st.Entry)
	return nil
}

func (s *Store) DrawsByAccount(ctx context.Context, accountID string) ([]settle.DrawRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []settle.DrawRecord
	for _, d := range s.draws {
		if d.AccountID == accountID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *Store) DrawsBySession(ctx context.Context, sessionID string) ([]settle.DrawRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []settle.DrawRecord
	for _, d := range s.draws {
		if d.SessionID == sessionID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *Store) EntriesByAccount(ctx context.Context, accountID string) ([]settle.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []settle.LedgerEntry
	for _, e := range s.entries {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) Holdings(ctx context.Context, accountID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.holdings[accountID]))
	copy(out, s.holdings[accountID])
	return out, nil
}

var (
	_ catalog.CampaignStore  = (*Store)(nil)
	_ catalog.Reader         = (*Store)(nil)
	_ settle.SettlementStore = (*Store)(nil)
)
