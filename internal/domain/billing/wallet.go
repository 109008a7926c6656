package billing

import (
	"time"

	"github.com/bhavya681/akobot-billing/internal/domain/enums"
)

// LedgerEntry is an immutable wallet balance change reported by the upstream
// ledger. Amount is signed: positive for credits, negative for debits. Balances
// are never computed here, only displayed.
type LedgerEntry struct {
	At     time.Time        `json:"at"`
	Amount int64            `json:"amount"`
	Kind   enums.LedgerKind `json:"kind"`
	Remark string           `json:"remark"`
	Actor  string           `json:"actor"`
}

// VerificationResult is the verifier's answer for a submitted proof.
type VerificationResult struct {
	Outcome         enums.VerificationOutcome `json:"outcome"`
	CreditedCredits int                       `json:"credited_credits"`
}
