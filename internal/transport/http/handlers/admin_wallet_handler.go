package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bhavya681/akobot-billing/internal/repo/upstream"
	walletsvc "github.com/bhavya681/akobot-billing/internal/services/wallet"
	"github.com/bhavya681/akobot-billing/internal/transport/http/dto"
	httperrors "github.com/bhavya681/akobot-billing/internal/transport/http/errors"
)

type AdminWalletHandler struct {
	admin *walletsvc.AdminService
}

func NewAdminWalletHandler(admin *walletsvc.AdminService) *AdminWalletHandler {
	return &AdminWalletHandler{admin: admin}
}

func (h *AdminWalletHandler) Balance(w http.ResponseWriter, r *http.Request) {
	if h.admin == nil {
		writeInternal(w, "ADMIN_WALLET_SERVICE_UNAVAILABLE", "admin wallet service is unavailable")
		return
	}
	userID, ok := pathUserID(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid user id")
		return
	}

	snapshot, err := h.admin.Balance(r.Context(), userID)
	if err != nil {
		handleAdminWalletError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.AdminWalletBalanceResponse{
		UserID:  userID,
		Balance: snapshot.Balance,
	})
}

func (h *AdminWalletHandler) History(w http.ResponseWriter, r *http.Request) {
	if h.admin == nil {
		writeInternal(w, "ADMIN_WALLET_SERVICE_UNAVAILABLE", "admin wallet service is unavailable")
		return
	}
	userID, ok := pathUserID(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid user id")
		return
	}

	history, err := h.admin.History(r.Context(), userID)
	if err != nil {
		handleAdminWalletError(w, err)
		return
	}

	entries := make([]dto.LedgerEntryResponse, 0, len(history))
	for _, entry := range history {
		entries = append(entries, ledgerEntryResponse(entry))
	}
	httperrors.Write(w, http.StatusOK, dto.AdminWalletHistoryResponse{
		UserID:  userID,
		History: entries,
	})
}

// Action applies a manual credit or debit. Validation failures come back
// before the upstream ledger is touched; a success response always carries a
// freshly fetched wallet snapshot.
func (h *AdminWalletHandler) Action(w http.ResponseWriter, r *http.Request) {
	if h.admin == nil {
		writeInternal(w, "ADMIN_WALLET_SERVICE_UNAVAILABLE", "admin wallet service is unavailable")
		return
	}

	var req dto.AdminWalletActionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	result, err := h.admin.Apply(r.Context(), walletsvc.ApplyInput{
		UserID: req.UserID,
		Amount: req.Amount,
		Action: req.Action,
		Remark: req.Remark,
	})
	if err != nil {
		handleAdminWalletError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.AdminWalletActionResponse{
		OK:     true,
		Entry:  ledgerEntryResponse(result.Entry),
		Wallet: walletSnapshotResponse(result.Snapshot),
	})
}

func handleAdminWalletError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, walletsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid wallet action")
	case errors.Is(err, upstream.ErrRejected):
		writeBadRequest(w, "ACTION_REJECTED", "wallet action was rejected")
	case errors.Is(err, upstream.ErrUnavailable):
		httperrors.Write(w, http.StatusBadGateway, httperrors.APIError{
			Code:    "NETWORK_ERROR",
			Message: "wallet ledger is temporarily unavailable",
		})
	default:
		writeInternal(w, "INTERNAL_ERROR", "wallet action failed")
	}
}

func pathUserID(r *http.Request) (int64, bool) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || userID <= 0 {
		return 0, false
	}
	return userID, true
}
