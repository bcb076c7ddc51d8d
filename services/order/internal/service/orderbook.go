package service

import "github.com/Skotchmaster/marketplace/internal/models"

// orderBook maps seller id to the order opened for that seller during one
// checkout, remembering the order in which sellers were first seen.
type orderBook struct {
	index  map[uint]int
	orders []*models.Order
}

func newOrderBook() *orderBook {
	return &orderBook{index: make(map[uint]int)}
}

func (b *orderBook) get(sellerID uint) (*models.Order, bool) {
	i, ok := b.index[sellerID]
	if !ok {
		return nil, false
	}
	return b.orders[i], true
}

func (b *orderBook) add(sellerID uint, o *models.Order) {
	b.index[sellerID] = len(b.orders)
	b.orders = append(b.orders, o)
}

func (b *orderBook) list() []models.Order {
	out := make([]models.Order, 0, len(b.orders))
	for _, o := range b.orders {
		out = append(out, *o)
	}
	return out
}
