package enums

// GatewayKind distinguishes checkout mechanics: a modal gateway opens an
// embedded widget in the client, a redirect gateway navigates the browser away.
type GatewayKind string

const (
	GatewayKindModal    GatewayKind = "modal"
	GatewayKindRedirect GatewayKind = "redirect"
)

func ParseGatewayKind(raw string) (GatewayKind, bool) {
	switch GatewayKind(raw) {
	case GatewayKindModal:
		return GatewayKindModal, true
	case GatewayKindRedirect:
		return GatewayKindRedirect, true
	default:
		return "", false
	}
}
