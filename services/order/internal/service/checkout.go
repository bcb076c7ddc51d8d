package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/pkg/logging"
	"github.com/Skotchmaster/marketplace/pkg/mykafka"
	"github.com/Skotchmaster/marketplace/services/order/internal/repo"
	"github.com/Skotchmaster/marketplace/services/order/internal/transport"
)

// UnknownSKUPolicy decides what checkout does with a cart line whose sku does
// not exist.
type UnknownSKUPolicy string

const (
	// UnknownSKUAbort fails the whole checkout before anything is written.
	UnknownSKUAbort UnknownSKUPolicy = "abort"
	// UnknownSKUSkip reports the line as sku_not_found and carries on.
	UnknownSKUSkip UnknownSKUPolicy = "skip"
)

func ParseUnknownSKUPolicy(s string) (UnknownSKUPolicy, error) {
	switch p := UnknownSKUPolicy(s); p {
	case "":
		return UnknownSKUAbort, nil
	case UnknownSKUAbort, UnknownSKUSkip:
		return p, nil
	default:
		return "", fmt.Errorf("unknown sku policy %q", s)
	}
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type OrderService struct {
	Repo       *repo.GormRepo
	StockMode  StockMode
	UnknownSKU UnknownSKUPolicy
	Events     EventPublisher
}

func validateCheckout(req transport.CheckoutRequest) error {
	var verr ValidationError

	if strings.TrimSpace(req.Name) == "" {
		verr.add("name", "This field is required.")
	}
	if strings.TrimSpace(req.Address) == "" {
		verr.add("address", "This field is required.")
	}
	if strings.TrimSpace(req.Phone) == "" {
		verr.add("phone", "This field is required.")
	}
	if len(req.Units) == 0 {
		verr.add("units", "At least one unit is required.")
	}
	for i, line := range req.Units {
		if strings.TrimSpace(line.SKU) == "" {
			verr.add(fmt.Sprintf("units[%d].sku", i), "This field is required.")
		}
		if line.Quantity <= 0 {
			verr.add(fmt.Sprintf("units[%d].quantity", i), "Ensure this value is greater than 0.")
		}
	}

	if verr.empty() {
		return nil
	}
	return &verr
}

// Checkout turns a cart into orders, one per seller in the order sellers first
// appear in the cart. A line whose quantity exceeds the unit's stock is
// skipped and reported; it does not fail the checkout. The order for a seller
// is opened when the seller is first seen, so it stays empty if all of that
// seller's lines are skipped.
func (s *OrderService) Checkout(ctx context.Context, buyerID uint, req transport.CheckoutRequest) (*transport.CheckoutResult, error) {
	if err := validateCheckout(req); err != nil {
		return nil, err
	}

	result := &transport.CheckoutResult{Lines: make([]transport.LineOutcome, 0, len(req.Units))}

	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		skus := make([]string, 0, len(req.Units))
		for _, line := range req.Units {
			skus = append(skus, line.SKU)
		}
		units, err := tx.UnitsBySKU(ctx, skus)
		if err != nil {
			return err
		}

		if s.UnknownSKU != UnknownSKUSkip {
			for _, line := range req.Units {
				if _, ok := units[line.SKU]; !ok {
					return fmt.Errorf("%w: sku %s", ErrNotFound, line.SKU)
				}
			}
		}

		book := newOrderBook()
		for _, line := range req.Units {
			outcome := transport.LineOutcome{SKU: line.SKU, Quantity: line.Quantity}

			unit, ok := units[line.SKU]
			if !ok {
				outcome.Status = transport.LineSKUNotFound
				result.Lines = append(result.Lines, outcome)
				continue
			}

			sellerID := unit.Product.SellerID
			order, ok := book.get(sellerID)
			if !ok {
				order = &models.Order{
					UserID:  buyerID,
					Name:    req.Name,
					Address: req.Address,
					Phone:   req.Phone,
				}
				if err := tx.CreateOrder(ctx, order); err != nil {
					return err
				}
				book.add(sellerID, order)
			}

			reserved, err := s.StockMode.reserve(ctx, tx, unit, line.Quantity)
			if err != nil {
				return err
			}
			if !reserved {
				outcome.Status = transport.LineSkippedInsufficientStock
				result.Lines = append(result.Lines, outcome)
				continue
			}

			ou := models.OrderUnit{OrderID: order.ID, UnitID: unit.ID, Quantity: line.Quantity}
			if err := tx.CreateOrderUnit(ctx, &ou); err != nil {
				return err
			}
			order.Units = append(order.Units, ou)

			outcome.Status = transport.LineCreated
			outcome.OrderID = order.ID
			result.Lines = append(result.Lines, outcome)
		}

		result.Orders = book.list()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishCreated(ctx, result.Orders)
	return result, nil
}

func (s *OrderService) publishCreated(ctx context.Context, orders []models.Order) {
	if s.Events == nil {
		return
	}
	l := logging.FromContext(ctx)

	for _, o := range orders {
		units := make([]map[string]any, 0, len(o.Units))
		for _, ou := range o.Units {
			units = append(units, map[string]any{"unit_id": ou.UnitID, "quantity": ou.Quantity})
		}
		ev := mykafka.NewEvent("order_created", map[string]any{
			"order_id": o.ID,
			"user_id":  o.UserID,
			"units":    units,
		})
		if err := s.Events.PublishEvent(ctx, mykafka.OrderEvents, strconv.FormatUint(uint64(o.ID), 10), ev); err != nil {
			l.Error("order_event_publish_failed", "order_id", o.ID, "error", err)
		}
	}
}
