package handlers

import (
	"errors"
	"net/http"

	"github.com/bhavya681/akobot-billing/internal/repo/upstream"
	authsvc "github.com/bhavya681/akobot-billing/internal/services/auth"
	walletsvc "github.com/bhavya681/akobot-billing/internal/services/wallet"
	httperrors "github.com/bhavya681/akobot-billing/internal/transport/http/errors"
)

type WalletHandler struct {
	wallet *walletsvc.Bridge
}

func NewWalletHandler(wallet *walletsvc.Bridge) *WalletHandler {
	return &WalletHandler{wallet: wallet}
}

// Get serves the wallet snapshot, cached copy allowed. The snapshot carries
// Cached and FetchedAt so clients can show how fresh the view is.
func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, false)
}

// Refresh bypasses the cache. Used by the post-purchase and post-redirect
// landings where a stale balance would look like a lost payment.
func (h *WalletHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, true)
}

func (h *WalletHandler) serve(w http.ResponseWriter, r *http.Request, force bool) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.wallet == nil {
		writeInternal(w, "WALLET_SERVICE_UNAVAILABLE", "wallet service is unavailable")
		return
	}

	var (
		snapshot walletsvc.Snapshot
		err      error
	)
	if force {
		snapshot, err = h.wallet.ForceRefresh(r.Context(), identity.UserID)
	} else {
		snapshot, err = h.wallet.Refresh(r.Context(), identity.UserID)
	}
	if err != nil {
		switch {
		case errors.Is(err, walletsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid wallet request")
		case errors.Is(err, upstream.ErrUnavailable):
			httperrors.Write(w, http.StatusBadGateway, httperrors.APIError{
				Code:    "NETWORK_ERROR",
				Message: "wallet is temporarily unavailable",
			})
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load wallet")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, walletSnapshotResponse(snapshot))
}
