package enums

type LedgerKind string

const (
	LedgerKindCredit LedgerKind = "credit"
	LedgerKindDebit  LedgerKind = "debit"
)

func ParseLedgerKind(raw string) (LedgerKind, bool) {
	switch LedgerKind(raw) {
	case LedgerKindCredit:
		return LedgerKindCredit, true
	case LedgerKindDebit:
		return LedgerKindDebit, true
	default:
		return "", false
	}
}
