package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/maru-games/gacha-settlement-engine/settle"
)

type drawRequest struct {
	AccountID  string `json:"accountId"`
	CampaignID string `json:"campaignId"`
	Count      int    `json:"count,omitempty"` // batch only; defaults to 10
}

type drawResponse struct {
	SessionID string                  `json:"sessionId"`
	Rewards   []settle.ResolvedReward `json:"rewards"`
}

func decodeDrawRequest(w http.ResponseWriter, r *http.Request) (drawRequest, bool) {
	var req drawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body", "bad_request")
		return req, false
	}
	req.AccountID = strings.TrimSpace(req.AccountID)
	req.CampaignID = strings.TrimSpace(req.CampaignID)
	if req.AccountID == "" || req.CampaignID == "" {
		writeError(w, http.StatusBadRequest, "accountId and campaignId are required", "bad_request")
		return req, false
	}
	return req, true
}

func (s *Server) drawSingle(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeDrawRequest(w, r)
	if !ok {
		return
	}
	reward, err := s.coord.DrawSingle(r.Context(), req.AccountID, req.CampaignID)
	if err != nil {
		writeSettlementError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, drawResponse{
		SessionID: reward.SessionID,
		Rewards:   []settle.ResolvedReward{reward},
	})
}

func (s *Server) drawBatch(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeDrawRequest(w, r)
	if !ok {
		return
	}
	if req.Count == 0 {
		req.Count = 10
	}
	rewards, err := s.coord.DrawBatch(r.Context(), req.AccountID, req.CampaignID, req.Count)
	if err != nil {
		writeSettlementError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, drawResponse{
		SessionID: rewards[0].SessionID,
		Rewards:   rewards,
	})
}

func (s *Server) getBalance(w http.ResponseWriter, r *http.Request) {
	accountID := strings.TrimSpace(r.URL.Query().Get("accountId"))
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "accountId required", "bad_request")
		return
	}
	balance, err := s.store.GetBalance(r.Context(), accountID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "internal")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"accountId": accountID,
		"balance":   balance,
	})
}

// listDraws returns draw records by account or by settlement session.
func (s *Server) listDraws(w http.ResponseWriter, r *http.Request) {
	accountID := strings.TrimSpace(r.URL.Query().Get("accountId"))
	sessionID := strings.TrimSpace(r.URL.Query().Get("sessionId"))

	var (
		draws []settle.DrawRecord
		err   error
	)
	switch {
	case sessionID != "":
		draws, err = s.store.DrawsBySession(r.Context(), sessionID)
	case accountID != "":
		draws, err = s.store.DrawsByAccount(r.Context(), accountID)
	default:
		writeError(w, http.StatusBadRequest, "accountId or sessionId required", "bad_request")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "internal")
		return
	}
	if draws == nil {
		draws = []settle.DrawRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"draws": draws})
}

// creditStore is the optional top-up surface both storage backends provide.
type creditStore interface {
	Credit(ctx context.Context, accountID string, amount decimal.Decimal) error
}

// credit adds funds to an account so draws can be paid for. Real deposits
// belong to the payments layer; this is the ledger's credit primitive.
func (s *Server) credit(w http.ResponseWriter, r *http.Request) {
	cs, ok := s.store.(creditStore)
	if !ok {
		writeError(w, http.StatusNotImplemented, "credits not supported by this storage backend", "unsupported")
		return
	}
	var req struct {
		AccountID string          `json:"accountId"`
		Amount    decimal.Decimal `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body", "bad_request")
		return
	}
	req.AccountID = strings.TrimSpace(req.AccountID)
	if req.AccountID == "" || !req.Amount.IsPositive() {
		writeError(w, http.StatusBadRequest, "accountId and a positive amount are required", "bad_request")
		return
	}
	if err := cs.Credit(r.Context(), req.AccountID, req.Amount); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "internal")
		return
	}
	balance, err := s.store.GetBalance(r.Context(), req.AccountID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "internal")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"accountId": req.AccountID,
		"balance":   balance,
	})
}

func (s *Server) listLedger(w http.ResponseWriter, r *http.Request) {
	accountID := strings.TrimSpace(r.URL.Query().Get("accountId"))
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "accountId required", "bad_request")
		return
	}
	entries, err := s.store.EntriesByAccount(r.Context(), accountID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "internal")
		return
	}
	if entries == nil {
		entries = []settle.LedgerEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}
