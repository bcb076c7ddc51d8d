package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/marketplace/internal/models"
)

func (s *OrderService) ListOrders(ctx context.Context, buyerID uint) ([]models.Order, error) {
	return s.Repo.ListOrders(ctx, buyerID)
}

// GetOrder returns the order only to the buyer who placed it.
func (s *OrderService) GetOrder(ctx context.Context, buyerID, orderID uint) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	if err != nil {
		return nil, err
	}
	if order.UserID != buyerID {
		return nil, fmt.Errorf("%w: order %d belongs to another buyer", ErrUnauthorized, orderID)
	}
	return order, nil
}
