package shop

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
)

// mockStripeClient captures the params it was called with.
type mockStripeClient struct {
	params *stripe.CheckoutSessionParams
	url    string
	err    error
}

func (m *mockStripeClient) CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	m.params = params
	if m.err != nil {
		return nil, m.err
	}
	return &stripe.CheckoutSession{URL: m.url}, nil
}

// TestCheckoutService_Checkout verifies line items, minor-unit prices,
// and the member reference on the created session.
func TestCheckoutService_Checkout(t *testing.T) {
	carts := NewInMemoryCartRepository()
	cart := Cart{}
	cart.Add(CartItem{ProductID: "p1", Name: "Tote Bag", Price: 15, Quantity: 2})
	cart.Add(CartItem{ProductID: "p2", Name: "Mug", Price: 9.99, Quantity: 1})
	if err := carts.Set(context.Background(), "member-1", cart); err != nil {
		t.Fatalf("seed cart: %v", err)
	}

	mock := &mockStripeClient{url: "https://checkout.example/session"}
	svc := NewCheckoutService(mock, carts, "https://club.example/thanks", "https://club.example/cart")

	url, err := svc.Checkout(context.Background(), "member-1")
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example/session", url)

	p := mock.params
	require.NotNil(t, p, "stripe client was not called")
	require.Len(t, p.LineItems, 2)
	assert.Equal(t, int64(1500), *p.LineItems[0].PriceData.UnitAmount, "prices are minor units")
	assert.Equal(t, int64(999), *p.LineItems[1].PriceData.UnitAmount)
	assert.Equal(t, int64(2), *p.LineItems[0].Quantity)
	assert.Equal(t, "member-1", *p.ClientReferenceID)

	// The cart stays until payment confirmation arrives out of band.
	kept, err := carts.Get(context.Background(), "member-1")
	require.NoError(t, err)
	assert.Len(t, kept.Items, 2, "cart must survive checkout")
}

// TestCheckoutService_EmptyCart verifies the distinct empty-cart error.
func TestCheckoutService_EmptyCart(t *testing.T) {
	carts := NewInMemoryCartRepository()
	svc := NewCheckoutService(&mockStripeClient{}, carts, "s", "c")

	if _, err := svc.Checkout(context.Background(), "member-1"); !errors.Is(err, ErrEmptyCart) {
		t.Errorf("error = %v, want ErrEmptyCart", err)
	}
}

// TestCheckoutService_StripeFailure wraps the provider error.
func TestCheckoutService_StripeFailure(t *testing.T) {
	carts := NewInMemoryCartRepository()
	cart := Cart{}
	cart.Add(CartItem{ProductID: "p1", Name: "Tote Bag", Price: 15, Quantity: 1})
	if err := carts.Set(context.Background(), "member-1", cart); err != nil {
		t.Fatalf("seed cart: %v", err)
	}

	svc := NewCheckoutService(&mockStripeClient{err: errors.New("declined")}, carts, "s", "c")
	if _, err := svc.Checkout(context.Background(), "member-1"); err == nil {
		t.Error("expected error from provider failure")
	}
}

// TestInMemoryCartRepository verifies copy semantics and clear.
func TestInMemoryCartRepository(t *testing.T) {
	repo := NewInMemoryCartRepository()
	ctx := context.Background()

	// Missing cart is an empty cart.
	cart, err := repo.Get(ctx, "m1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Errorf("missing cart has %d items, want 0", len(cart.Items))
	}

	cart.Add(CartItem{ProductID: "p1", Quantity: 1})
	if err := repo.Set(ctx, "m1", cart); err != nil {
		t.Fatalf("set: %v", err)
	}

	// Mutating the returned copy must not alter the stored cart.
	got, _ := repo.Get(ctx, "m1")
	got.Items[0].Quantity = 99
	again, _ := repo.Get(ctx, "m1")
	if again.Items[0].Quantity != 1 {
		t.Error("repository returned a shared slice instead of a copy")
	}

	if err := repo.Clear(ctx, "m1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	cleared, _ := repo.Get(ctx, "m1")
	if len(cleared.Items) != 0 {
		t.Error("cart not cleared")
	}
}
