package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/marketplace/internal/testutil"
)

func TestGetOrder_Visibility(t *testing.T) {
	s := newShop(t)
	other := testutil.Buyer(t, s.db, "other")
	ctx := context.Background()

	res, err := s.svc.Checkout(ctx, s.buyer.ID, cart(line("A", 2)))
	require.NoError(t, err)
	id := res.Orders[0].ID

	order, err := s.svc.GetOrder(ctx, s.buyer.ID, id)
	require.NoError(t, err)
	require.Len(t, order.Units, 1)
	assert.Equal(t, 2, order.Units[0].Quantity)
	assert.Equal(t, "A", order.Units[0].Unit.SKU)
	assert.Equal(t, "Shirt", order.Units[0].Unit.Product.Title)

	_, err = s.svc.GetOrder(ctx, other.ID, id)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.NotErrorIs(t, err, ErrNotFound)

	_, err = s.svc.GetOrder(ctx, s.buyer.ID, id+100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListOrders_OnlyOwn(t *testing.T) {
	s := newShop(t)
	other := testutil.Buyer(t, s.db, "other")
	ctx := context.Background()

	_, err := s.svc.Checkout(ctx, s.buyer.ID, cart(line("A", 1), line("B", 1)))
	require.NoError(t, err)
	_, err = s.svc.Checkout(ctx, other.ID, cart(line("C", 1)))
	require.NoError(t, err)

	mine, err := s.svc.ListOrders(ctx, s.buyer.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, o := range mine {
		assert.Equal(t, s.buyer.ID, o.UserID)
	}
	assert.Greater(t, mine[0].ID, mine[1].ID)

	theirs, err := s.svc.ListOrders(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, theirs, 1)
}
