package service

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/services/order/internal/repo"
)

// StockMode selects how checkout checks and decrements unit stock.
type StockMode string

const (
	// StockAtomic uses a conditional UPDATE ... WHERE num_in_stock >= qty.
	StockAtomic StockMode = "atomic"
	// StockRowLock re-reads the unit FOR UPDATE inside the checkout transaction.
	StockRowLock StockMode = "row_lock"
	// StockLegacy checks and writes from the snapshot loaded at the start of
	// checkout. Concurrent checkouts can lose updates and oversell.
	StockLegacy StockMode = "legacy"
)

func ParseStockMode(s string) (StockMode, error) {
	switch m := StockMode(s); m {
	case "":
		return StockAtomic, nil
	case StockAtomic, StockRowLock, StockLegacy:
		return m, nil
	default:
		return "", fmt.Errorf("unknown stock mode %q", s)
	}
}

// reserve takes qty units of stock for unit. false means not enough stock;
// nothing is written in that case.
func (m StockMode) reserve(ctx context.Context, tx *repo.GormRepo, unit *models.Unit, qty int) (bool, error) {
	switch m {
	case StockRowLock:
		locked, err := tx.LockUnit(ctx, unit.ID)
		if err != nil {
			return false, err
		}
		if locked.NumInStock < qty {
			return false, nil
		}
		if err := tx.SetStock(ctx, unit.ID, locked.NumInStock-qty); err != nil {
			return false, err
		}
		unit.NumInStock = locked.NumInStock - qty
		return true, nil

	case StockLegacy:
		if unit.NumInStock < qty {
			return false, nil
		}
		unit.NumInStock -= qty
		return true, tx.SetStock(ctx, unit.ID, unit.NumInStock)

	default:
		ok, err := tx.DecrementStock(ctx, unit.ID, qty)
		if err != nil || !ok {
			return false, err
		}
		unit.NumInStock -= qty
		return true, nil
	}
}
