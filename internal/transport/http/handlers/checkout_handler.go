package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bhavya681/akobot-billing/internal/domain/billing"
	authsvc "github.com/bhavya681/akobot-billing/internal/services/auth"
	checkoutsvc "github.com/bhavya681/akobot-billing/internal/services/checkout"
	gatewaysvc "github.com/bhavya681/akobot-billing/internal/services/gateway"
	"github.com/bhavya681/akobot-billing/internal/transport/http/dto"
	httperrors "github.com/bhavya681/akobot-billing/internal/transport/http/errors"
)

type CheckoutHandler struct {
	coordinator *checkoutsvc.Coordinator
}

func NewCheckoutHandler(coordinator *checkoutsvc.Coordinator) *CheckoutHandler {
	return &CheckoutHandler{coordinator: coordinator}
}

// Create starts a purchase attempt and answers with what the browser should
// do next: open a modal widget or follow a redirect.
func (h *CheckoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.coordinator == nil {
		writeInternal(w, "CHECKOUT_SERVICE_UNAVAILABLE", "checkout service is unavailable")
		return
	}

	var req dto.CheckoutCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	identity, _ := authsvc.IdentityFromContext(r.Context())
	result, err := h.coordinator.Begin(r.Context(), identity, req.PackageID, req.Gateway)
	if err != nil {
		writeCheckoutError(w, err, req)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.CheckoutCreateResponse{
		Attempt: attemptResponse(result.Attempt),
		Launch:  launchResponse(result.Launch),
	})
}

// Callback relays the gateway widget's terminal callback for one attempt.
// Duplicate deliveries are answered with the settled state.
func (h *CheckoutHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if h.coordinator == nil {
		writeInternal(w, "CHECKOUT_SERVICE_UNAVAILABLE", "checkout service is unavailable")
		return
	}

	var req dto.CheckoutCallbackRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	in := checkoutsvc.CallbackInput{
		Outcome: req.Outcome,
		Reason:  req.Reason,
	}
	if req.Proof != nil {
		in.Proof = &billing.PaymentProof{
			GatewayOrderID:   req.Proof.GatewayOrderID,
			GatewayPaymentID: req.Proof.GatewayPaymentID,
			Signature:        req.Proof.Signature,
		}
	}

	result, err := h.coordinator.Resolve(r.Context(), chi.URLParam(r, "attemptID"), in)
	if err != nil {
		switch {
		case errors.Is(err, checkoutsvc.ErrAttemptNotFound):
			writeNotFound(w, "ATTEMPT_NOT_FOUND", "checkout attempt not found")
		case errors.Is(err, checkoutsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid checkout callback")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to process checkout callback")
		}
		return
	}

	resp := dto.CheckoutCallbackResponse{
		Attempt:         attemptResponse(result.Attempt),
		AlreadyResolved: result.AlreadyResolved,
	}
	if result.Wallet != nil {
		snapshot := walletSnapshotResponse(*result.Wallet)
		resp.Wallet = &snapshot
	}
	httperrors.Write(w, http.StatusOK, resp)
}

// Get returns the current attempt state for polling clients, redirect
// landings included.
func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.coordinator == nil {
		writeInternal(w, "CHECKOUT_SERVICE_UNAVAILABLE", "checkout service is unavailable")
		return
	}

	attempt, err := h.coordinator.Attempt(chi.URLParam(r, "attemptID"))
	if err != nil {
		writeNotFound(w, "ATTEMPT_NOT_FOUND", "checkout attempt not found")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.CheckoutAttemptResponse{
		Attempt: attemptResponse(attempt),
	})
}

func launchResponse(launch gatewaysvc.Launch) dto.LaunchResponse {
	resp := dto.LaunchResponse{Kind: string(launch.Kind)}
	if launch.Modal != nil {
		resp.Modal = &dto.ModalSessionResponse{
			Gateway:  launch.Modal.Gateway,
			OrderID:  launch.Modal.OrderID,
			KeyID:    launch.Modal.KeyID,
			Amount:   launch.Modal.Amount,
			Currency: launch.Modal.Currency,
		}
	}
	if launch.Redirect != nil {
		resp.Redirect = &dto.RedirectResponse{URL: launch.Redirect.URL}
	}
	return resp
}

func writeCheckoutError(w http.ResponseWriter, err error, req dto.CheckoutCreateRequest) {
	switch {
	case errors.Is(err, checkoutsvc.ErrUnauthenticated):
		httperrors.Write(w, http.StatusUnauthorized, httperrors.SignInError{
			Code:          "UNAUTHENTICATED",
			Message:       "sign in to buy credits",
			ResumePackage: req.PackageID,
			ResumeGateway: req.Gateway,
		})
	case errors.Is(err, checkoutsvc.ErrAlreadyInProgress):
		httperrors.Write(w, http.StatusConflict, httperrors.APIError{
			Code:    "PURCHASE_IN_PROGRESS",
			Message: "a purchase for this package is already in progress",
		})
	case errors.Is(err, checkoutsvc.ErrUnsupportedGateway):
		writeBadRequest(w, "UNSUPPORTED_GATEWAY", "payment gateway is not supported")
	case errors.Is(err, checkoutsvc.ErrGatewayNotReady):
		httperrors.Write(w, http.StatusFailedDependency, httperrors.APIError{
			Code:    "GATEWAY_NOT_READY",
			Message: "payment gateway failed to load, try again later",
		})
	case errors.Is(err, checkoutsvc.ErrInvalidOrderResponse):
		httperrors.Write(w, http.StatusBadGateway, httperrors.APIError{
			Code:    "INVALID_ORDER_RESPONSE",
			Message: "payment could not be initiated",
		})
	case errors.Is(err, checkoutsvc.ErrPackageUnavailable):
		writeNotFound(w, "PACKAGE_UNAVAILABLE", "package is not available for purchase")
	case errors.Is(err, checkoutsvc.ErrNetwork):
		httperrors.Write(w, http.StatusBadGateway, httperrors.APIError{
			Code:    "NETWORK_ERROR",
			Message: "payment backend is temporarily unavailable",
		})
	case errors.Is(err, checkoutsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid checkout request")
	default:
		writeInternal(w, "INTERNAL_ERROR", "failed to start checkout")
	}
}
