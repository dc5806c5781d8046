package shop

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"

	"github.com/turnpage/turnpage/internal/cms"
)

// ErrEmptyCart indicates checkout was attempted with no cart lines.
var ErrEmptyCart = errors.New("shop: cart is empty")

// currency for all merchandise prices.
const currency = "usd"

// StripeClient is the interface for Stripe operations, kept narrow to
// enable testing with mocks.
type StripeClient interface {
	CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// LiveStripeClient implements StripeClient using the real Stripe SDK.
type LiveStripeClient struct{}

// NewLiveStripeClient configures the Stripe SDK with the given API key.
func NewLiveStripeClient(apiKey string) *LiveStripeClient {
	stripe.Key = apiKey
	return &LiveStripeClient{}
}

// CreateCheckoutSession creates a Stripe Checkout Session.
func (c *LiveStripeClient) CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return session.New(params)
}

// CheckoutService turns a member's cart into a Stripe Checkout Session.
type CheckoutService struct {
	stripe     StripeClient
	carts      CartRepository
	successURL string
	cancelURL  string
}

// NewCheckoutService creates a CheckoutService.
func NewCheckoutService(sc StripeClient, carts CartRepository, successURL, cancelURL string) *CheckoutService {
	return &CheckoutService{
		stripe:     sc,
		carts:      carts,
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

// Checkout creates a checkout session for the member's current cart and
// returns the hosted payment page URL. The cart is kept until payment
// confirmation arrives out of band; abandoning the session leaves it
// intact.
func (s *CheckoutService) Checkout(ctx context.Context, memberID string) (string, error) {
	cart, err := s.carts.Get(ctx, memberID)
	if err != nil {
		return "", err
	}
	if len(cart.Items) == 0 {
		return "", ErrEmptyCart
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, len(cart.Items))
	for i, item := range cart.Items {
		lineItems[i] = &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(int64(item.Quantity)),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(toCents(item.Price)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
			},
		}
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:         lineItems,
		SuccessURL:        stripe.String(s.successURL),
		CancelURL:         stripe.String(s.cancelURL),
		ClientReferenceID: stripe.String(memberID),
	}

	sess, err := s.stripe.CreateCheckoutSession(params)
	if err != nil {
		return "", fmt.Errorf("shop: create checkout session: %w", err)
	}
	return sess.URL, nil
}

// toCents converts a catalog price to Stripe's integer minor units.
func toCents(price float64) int64 {
	return int64(math.Round(price * 100))
}

// ProductRepository defines merchandise catalog reads.
type ProductRepository interface {
	// ListProducts returns the whole merchandise catalog.
	ListProducts(ctx context.Context) ([]Product, error)

	// GetProduct retrieves a product by ID, or cms.ErrNotFound.
	GetProduct(ctx context.Context, id string) (*Product, error)
}

// CMSProductRepository reads merchandise from the data-items API.
type CMSProductRepository struct {
	client *cms.Client
}

// NewCMSProductRepository creates a product repository over the CMS client.
func NewCMSProductRepository(client *cms.Client) *CMSProductRepository {
	return &CMSProductRepository{client: client}
}

// ListProducts returns the whole merchandise catalog.
func (r *CMSProductRepository) ListProducts(ctx context.Context) ([]Product, error) {
	records, err := r.client.Query(ctx, cms.CollectionMerchandise, nil)
	if err != nil {
		return nil, err
	}
	products := make([]Product, 0, len(records))
	for _, rec := range records {
		products = append(products, ProductFromRecord(rec))
	}
	return products, nil
}

// GetProduct retrieves a product by ID.
func (r *CMSProductRepository) GetProduct(ctx context.Context, id string) (*Product, error) {
	rec, err := r.client.Get(ctx, cms.CollectionMerchandise, id)
	if err != nil {
		return nil, err
	}
	p := ProductFromRecord(rec)
	return &p, nil
}

// InMemoryProductRepository is an in-memory ProductRepository used for
// testing and development.
type InMemoryProductRepository struct {
	mu       sync.RWMutex
	products map[string]Product
}

// NewInMemoryProductRepository creates an empty in-memory product catalog.
func NewInMemoryProductRepository() *InMemoryProductRepository {
	return &InMemoryProductRepository{products: make(map[string]Product)}
}

// AddProduct stores a product (test helper).
func (r *InMemoryProductRepository) AddProduct(p Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = p
}

// ListProducts returns the stored products.
func (r *InMemoryProductRepository) ListProducts(ctx context.Context) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}

// GetProduct retrieves a product by ID.
func (r *InMemoryProductRepository) GetProduct(ctx context.Context, id string) (*Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, cms.ErrNotFound
	}
	return &p, nil
}
