package enums

// AttemptStatus is the state of a purchase attempt. An attempt moves strictly
// forward; redirected, succeeded and failed are terminal.
type AttemptStatus string

const (
	AttemptStatusIdle             AttemptStatus = "idle"
	AttemptStatusSelectingGateway AttemptStatus = "selecting_gateway"
	AttemptStatusCreatingOrder    AttemptStatus = "creating_order"
	AttemptStatusAwaitingGateway  AttemptStatus = "awaiting_gateway"
	AttemptStatusVerifying        AttemptStatus = "verifying"
	AttemptStatusRedirected       AttemptStatus = "redirected"
	AttemptStatusSucceeded        AttemptStatus = "succeeded"
	AttemptStatusFailed           AttemptStatus = "failed"
)

func (s AttemptStatus) Terminal() bool {
	switch s {
	case AttemptStatusRedirected, AttemptStatusSucceeded, AttemptStatusFailed:
		return true
	default:
		return false
	}
}
