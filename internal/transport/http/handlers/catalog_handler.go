package handlers

import (
	"errors"
	"net/http"

	"github.com/bhavya681/akobot-billing/internal/repo/upstream"
	catalogsvc "github.com/bhavya681/akobot-billing/internal/services/catalog"
	"github.com/bhavya681/akobot-billing/internal/transport/http/dto"
	httperrors "github.com/bhavya681/akobot-billing/internal/transport/http/errors"
)

type CatalogHandler struct {
	catalog *catalogsvc.Service
}

func NewCatalogHandler(catalog *catalogsvc.Service) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeInternal(w, "CATALOG_SERVICE_UNAVAILABLE", "catalog service is unavailable")
		return
	}

	packages, err := h.catalog.List(r.Context())
	if err != nil {
		if errors.Is(err, upstream.ErrUnavailable) {
			httperrors.Write(w, http.StatusBadGateway, httperrors.APIError{
				Code:    "NETWORK_ERROR",
				Message: "package catalog is temporarily unavailable",
			})
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to load packages")
		return
	}

	out := make([]dto.PackageResponse, 0, len(packages))
	for _, pkg := range packages {
		out = append(out, dto.PackageResponse{
			ID:              pkg.ID,
			Name:            pkg.Name,
			Description:     pkg.Description,
			IncludedCredits: pkg.IncludedCredits,
			CurrentPrice:    pkg.CurrentPrice,
			OriginalPrice:   pkg.OriginalPrice,
			OfferLabel:      pkg.OfferLabel,
		})
	}
	httperrors.Write(w, http.StatusOK, dto.PackagesResponse{Packages: out})
}
