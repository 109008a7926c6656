package enums

// VerificationOutcome is the result of submitting a payment proof to the
// upstream verifier. NetworkError means the charge may still have succeeded
// out-of-band, so callers must not treat it as a hard rejection.
type VerificationOutcome string

const (
	VerificationVerified     VerificationOutcome = "verified"
	VerificationRejected     VerificationOutcome = "rejected"
	VerificationNetworkError VerificationOutcome = "network_error"
)
