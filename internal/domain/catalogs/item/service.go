package item

import (
	"context"
	"fmt"

	"vendorbook/internal/core/apperror"
	"vendorbook/internal/core/id"
	"vendorbook/internal/core/tx"
	"vendorbook/internal/domain"
	"vendorbook/pkg/logger"
)

// Service provides business logic for the item catalog.
type Service struct {
	*domain.CatalogService[*Item]
	repo Repository
}

// NewService creates a new item service.
func NewService(repo Repository, txm tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Item]{
		Repo:       repo,
		TxManager:  txm,
		EntityName: "item",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}
	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	return svc
}

func (s *Service) prepareForCreate(_ context.Context, it *Item) error {
	if it.Category == "" {
		it.Category = "General"
	}
	return nil
}

// LowStock lists items at or below their low-stock threshold.
func (s *Service) LowStock(ctx context.Context) ([]*Item, error) {
	items, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	return items, nil
}

// SetStock overwrites an item's stock level.
func (s *Service) SetStock(ctx context.Context, itemID id.ID, stock int64) (*Item, error) {
	if stock < 0 {
		return nil, apperror.NewValidation("stock must not be negative").
			WithDetail("field", "stock")
	}

	err := s.TxManager().RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.SetStock(ctx, itemID, stock)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "item stock set", "id", itemID, "stock", stock)
	return s.GetByID(ctx, itemID)
}

// DecrementSold removes sold quantities from stock.
// Callers run it inside the transaction that records the sale.
func (s *Service) DecrementSold(ctx context.Context, sold map[id.ID]int64) error {
	if len(sold) == 0 {
		return nil
	}
	if err := s.repo.DecrementStock(ctx, sold); err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	return nil
}

// Counts returns the product count and the low-stock count.
func (s *Service) Counts(ctx context.Context) (total, lowStock int64, err error) {
	return s.repo.Count(ctx)
}
