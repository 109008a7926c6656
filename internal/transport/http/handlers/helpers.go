package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/bhavya681/akobot-billing/internal/domain/billing"
	walletsvc "github.com/bhavya681/akobot-billing/internal/services/wallet"
	"github.com/bhavya681/akobot-billing/internal/transport/http/dto"
	httperrors "github.com/bhavya681/akobot-billing/internal/transport/http/errors"
)

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{Code: code, Message: message})
}

func writeNotFound(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusNotFound, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}

func attemptResponse(attempt billing.Attempt) dto.AttemptResponse {
	return dto.AttemptResponse{
		ID:             attempt.ID,
		PackageID:      attempt.PackageID,
		Gateway:        attempt.Gateway,
		Status:         string(attempt.Status),
		FailureCode:    attempt.FailureCode,
		FailureMessage: attempt.FailureMessage,
		CreatedAt:      attempt.CreatedAt,
		SettledAt:      attempt.SettledAt,
	}
}

func ledgerEntryResponse(entry billing.LedgerEntry) dto.LedgerEntryResponse {
	return dto.LedgerEntryResponse{
		At:     entry.At,
		Amount: entry.Amount,
		Kind:   string(entry.Kind),
		Remark: entry.Remark,
		Actor:  entry.Actor,
	}
}

func walletSnapshotResponse(snapshot walletsvc.Snapshot) dto.WalletSnapshotResponse {
	history := make([]dto.LedgerEntryResponse, 0, len(snapshot.History))
	for _, entry := range snapshot.History {
		history = append(history, ledgerEntryResponse(entry))
	}
	return dto.WalletSnapshotResponse{
		Balance:   snapshot.Balance,
		History:   history,
		FetchedAt: snapshot.FetchedAt,
		Cached:    snapshot.Cached,
	}
}
