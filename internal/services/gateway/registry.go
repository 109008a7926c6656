package gateway

import (
	"errors"
	"strings"

	"github.com/bhavya681/akobot-billing/internal/domain/billing"
	"github.com/bhavya681/akobot-billing/internal/domain/enums"
)

var (
	ErrUnsupportedGateway = errors.New("unsupported gateway")
	ErrMissingKey         = errors.New("order is missing the gateway key")
)

// Launch is what the browser needs to continue checkout: either a modal
// widget session or a redirect target, never both.
type Launch struct {
	Kind     enums.GatewayKind `json:"kind"`
	Modal    *ModalSession     `json:"modal,omitempty"`
	Redirect *Redirect         `json:"redirect,omitempty"`
}

// ModalSession parameterizes an embedded checkout widget. The widget owns its
// own teardown; an order is never reopened in a second widget.
type ModalSession struct {
	Gateway  string `json:"gateway"`
	OrderID  string `json:"order_id"`
	KeyID    string `json:"key_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Redirect navigates the browser away. By construction this path never calls
// back into the coordinator; the landing page must re-query order status
// rather than assume success.
type Redirect struct {
	URL string `json:"url"`
}

type Descriptor struct {
	Name      string
	Kind      enums.GatewayKind
	ScriptURL string
}

// Registry resolves a gateway name and a created order into a Launch.
type Registry struct {
	gateways map[string]Descriptor
}

func NewRegistry(descriptors []Descriptor) *Registry {
	gateways := make(map[string]Descriptor, len(descriptors))
	for _, d := range descriptors {
		name := strings.ToLower(strings.TrimSpace(d.Name))
		if name == "" {
			continue
		}
		d.Name = name
		gateways[name] = d
	}
	return &Registry{gateways: gateways}
}

func (r *Registry) Known(gatewayName string) bool {
	_, ok := r.gateways[strings.ToLower(strings.TrimSpace(gatewayName))]
	return ok
}

func (r *Registry) ScriptURLs() map[string]string {
	urls := make(map[string]string, len(r.gateways))
	for name, d := range r.gateways {
		urls[name] = d.ScriptURL
	}
	return urls
}

// Resolve picks the checkout mechanic for an order. An order carrying a
// checkout URL always resolves to a redirect, even for a modal-kind gateway:
// the upstream intended a redirect and opening a widget instead would strand
// the payment. A modal launch without a gateway key fails closed; there is no
// fallback key.
func (r *Registry) Resolve(gatewayName string, order billing.Order) (Launch, error) {
	d, ok := r.gateways[strings.ToLower(strings.TrimSpace(gatewayName))]
	if !ok {
		return Launch{}, ErrUnsupportedGateway
	}

	if strings.TrimSpace(order.CheckoutURL) != "" {
		return Launch{
			Kind:     enums.GatewayKindRedirect,
			Redirect: &Redirect{URL: order.CheckoutURL},
		}, nil
	}

	if d.Kind == enums.GatewayKindRedirect {
		// Redirect gateway without a checkout URL cannot proceed.
		return Launch{}, ErrMissingKey
	}

	if strings.TrimSpace(order.KeyID) == "" {
		return Launch{}, ErrMissingKey
	}
	return Launch{
		Kind: enums.GatewayKindModal,
		Modal: &ModalSession{
			Gateway:  d.Name,
			OrderID:  order.ID,
			KeyID:    order.KeyID,
			Amount:   order.Amount,
			Currency: order.Currency,
		},
	}, nil
}
