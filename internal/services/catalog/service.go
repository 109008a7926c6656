package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bhavya681/akobot-billing/internal/domain/billing"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrPackageUnavailable = errors.New("package unavailable")
)

type Store interface {
	ListPackages(ctx context.Context) ([]billing.Package, error)
}

// Service is the purchasable-catalog view. The upstream owns the package list;
// this side only filters and orders it, and never treats an inactive package
// as purchasable no matter what the upstream returned.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context) ([]billing.Package, error) {
	if s.store == nil {
		return nil, fmt.Errorf("catalog store is nil")
	}

	all, err := s.store.ListPackages(ctx)
	if err != nil {
		return nil, fmt.Errorf("load packages: %w", err)
	}

	active := make([]billing.Package, 0, len(all))
	for _, p := range all {
		if p.IsActive {
			active = append(active, p)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].SortOrder < active[j].SortOrder
	})
	return active, nil
}

// Purchasable resolves a package id to an active package or fails.
func (s *Service) Purchasable(ctx context.Context, packageID string) (billing.Package, error) {
	packageID = strings.TrimSpace(packageID)
	if packageID == "" {
		return billing.Package{}, ErrValidation
	}

	active, err := s.List(ctx)
	if err != nil {
		return billing.Package{}, err
	}
	for _, p := range active {
		if p.ID == packageID {
			return p, nil
		}
	}
	return billing.Package{}, ErrPackageUnavailable
}
