// Package postgres is the production storage backend. Settlement atomicity
// rides on a single database transaction; per-account serialization of the
// funds check comes from SELECT ... FOR UPDATE on the balance row.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/maru-games/gacha-settlement-engine/catalog"
	"github.com/maru-games/gacha-settlement-engine/gacha"
	"github.com/maru-games/gacha-settlement-engine/settle"
)

// Store implements the catalog and settlement surfaces against Postgres.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database handle (see Open).
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// --- catalog.CampaignStore / catalog.Reader ---

func (s *Store) GetCampaign(ctx context.Context, id string) (catalog.Campaign, error) {
	const query = `
		SELECT id, name, starts_at, ends_at, active, single_price, batch_price,
		       rate_legendary, rate_epic, rate_rare, rate_common
		FROM campaigns WHERE id = $1`
	var c catalog.Campaign
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.StartsAt, &c.EndsAt, &c.Active,
		&c.SinglePrice, &c.BatchPrice,
		&c.Rates.Legendary, &c.Rates.Epic, &c.Rates.Rare, &c.Rates.Common,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Campaign{}, catalog.ErrCampaignNotFound
	}
	if err != nil {
		return catalog.Campaign{}, err
	}
	return c, nil
}

func (s *Store) ListItems(ctx context.Context, campaignID string, tier gacha.Tier) ([]catalog.Item, error) {
	// Ordered by position so the weighted walk is reproducible.
	const query = `
		SELECT id, name, tier, weight, available
		FROM items WHERE tier = $1
		ORDER BY position`
	rows, err := s.db.QueryContext(ctx, query, string(tier))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []catalog.Item
	for rows.Next() {
		var it catalog.Item
		var t string
		if err := rows.Scan(&it.ID, &it.Name, &t, &it.Weight, &it.Available); err != nil {
			return nil, err
		}
		it.Tier = gacha.Tier(t)
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *Store) FeaturedMultipliers(ctx context.Context, campaignID string) (map[string]float64, error) {
	const query = `SELECT item_id, multiplier FROM featured_items WHERE campaign_id = $1`
	rows, err := s.db.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	boosts := make(map[string]float64)
	for rows.Next() {
		var id string
		var mult float64
		if err := rows.Scan(&id, &mult); err != nil {
			return nil, err
		}
		boosts[id] = mult
	}
	return boosts, rows.Err()
}

// --- settle.SettlementStore ---

func (s *Store) GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	const query = `SELECT balance FROM account_balances WHERE account_id = $1`
	var balance decimal.Decimal
	err := s.db.QueryRowContext(ctx, query, accountID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

// Credit adds funds to an account, creating the balance row if needed.
func (s *Store) Credit(ctx context.Context, accountID string, amount decimal.Decimal) error {
	const query = `
		INSERT INTO account_balances (account_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (account_id) DO UPDATE
		SET balance = account_balances.balance + EXCLUDED.balance,
		    updated_at = now()`
	_, err := s.db.ExecContext(ctx, query, accountID, amount)
	return err
}

// ApplySettlement runs the whole settlement in one transaction. The balance
// row is locked FOR UPDATE so concurrent settlements for the same account
// serialize on the funds check; everything rolls back on any failure.
func (s *Store) ApplySettlement(ctx context.Context, st settle.Settlement) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var balance decimal.Decimal
	err = tx.QueryRowContext(ctx,
		`SELECT balance FROM account_balances WHERE account_id = $1 FOR UPDATE`,
		st.AccountID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		err = settle.ErrInsufficientFunds
		return err
	}
	if err != nil {
		return err
	}
	if balance.LessThan(st.Price) {
		err = settle.ErrInsufficientFunds
		return err
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE account_balances SET balance = balance - $2, updated_at = now() WHERE account_id = $1`,
		st.AccountID, st.Price); err != nil {
		return fmt.Errorf("debit balance: %w", err)
	}

	for _, r := range st.Records {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO draw_records (id, account_id, campaign_id, session_id, tier, item_id, price, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			r.ID, r.AccountID, r.CampaignID, r.SessionID, string(r.Tier), r.ItemID, r.Price, r.CreatedAt); err != nil {
			return fmt.Errorf("insert draw record: %w", err)
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO holdings (account_id, item_id, granted_at)
			VALUES ($1, $2, $3)`,
			r.AccountID, r.ItemID, r.CreatedAt); err != nil {
			return fmt.Errorf("grant item: %w", err)
		}
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO ledger_entries (id, account_id, amount, kind, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		st.Entry.ID, st.Entry.AccountID, st.Entry.Amount, st.Entry.Kind,
		st.Entry.Description, st.Entry.CreatedAt); err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}

	err = tx.Commit()
	return err
}

func (s *Store) DrawsByAccount(ctx context.Context, accountID string) ([]settle.DrawRecord, error) {
	const query = `
		SELECT id, account_id, campaign_id, session_id, tier, item_id, price, created_at
		FROM draw_records WHERE account_id = $1 ORDER BY created_at, id`
	return s.queryDraws(ctx, query, accountID)
}

func (s *Store) DrawsBySession(ctx context.Context, sessionID string) ([]settle.DrawRecord, error) {
	const query = `
		SELECT id, account_id, campaign_id, session_id, tier, item_id, price, created_at
		FROM draw_records WHERE session_id = $1 ORDER BY created_at, id`
	return s.queryDraws(ctx, query, sessionID)
}

func (s *Store) queryDraws(ctx context.Context, query string, arg any) ([]settle.DrawRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var draws []settle.DrawRecord
	for rows.Next() {
		var d settle.DrawRecord
		var tier string
		if err := rows.Scan(&d.ID, &d.AccountID, &d.CampaignID, &d.SessionID, &tier, &d.ItemID, &d.Price, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.Tier = gacha.Tier(tier)
		draws = append(draws, d)
	}
	return draws, rows.Err()
}

func (s *Store) EntriesByAccount(ctx context.Context, accountID string) ([]settle.LedgerEntry, error) {
	const query = `
		SELECT id, account_id, amount, kind, description, created_at
		FROM ledger_entries WHERE account_id = $1 ORDER BY created_at, id`
	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []settle.LedgerEntry
	for rows.Next() {
		var e settle.LedgerEntry
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Amount, &e.Kind, &e.Description, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) Holdings(ctx context.Context, accountID string) ([]string, error) {
	const query = `SELECT item_id FROM holdings WHERE account_id = $1 ORDER BY granted_at, item_id`
	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		items = append(items, id)
	}
	return items, rows.Err()
}

var (
	_ catalog.CampaignStore  = (*Store)(nil)
	_ catalog.Reader         = (*Store)(nil)
	_ settle.SettlementStore = (*Store)(nil)
)
