package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/maru-games/gacha-settlement-engine/catalog"
	"github.com/maru-games/gacha-settlement-engine/gacha"
	"github.com/maru-games/gacha-settlement-engine/settle"
)

// APIError is the standard error response shape.
type APIError struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, status int, errMsg, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIError{Error: errMsg, Code: code})
}

// writeSettlementError maps engine errors to HTTP responses. Commit failures
// are reported retryable (503): the store rolled everything back, so no
// funds moved.
func writeSettlementError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrCampaignNotFound):
		writeError(w, http.StatusNotFound, "campaign not found", "campaign_not_found")
	case errors.Is(err, settle.ErrCampaignInactive):
		writeError(w, http.StatusConflict, "campaign not active", "campaign_inactive")
	case errors.Is(err, settle.ErrInsufficientFunds):
		writeError(w, http.StatusPaymentRequired, "insufficient funds", "insufficient_funds")
	case errors.Is(err, settle.ErrInvalidDrawCount):
		writeError(w, http.StatusBadRequest, "draw count must be 1 or 10", "invalid_draw_count")
	case errors.Is(err, gacha.ErrTierExhausted):
		// Catalog data bug, not user error.
		writeError(w, http.StatusInternalServerError, "reward pool misconfigured", "tier_exhausted")
	case errors.Is(err, settle.ErrCommitFailed):
		writeError(w, http.StatusServiceUnavailable, "settlement failed, safe to retry", "commit_failed")
	default:
		writeError(w, http.StatusInternalServerError, err.Error(), "internal")
	}
}
