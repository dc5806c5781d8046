package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/turnpage/turnpage/internal/auth"
	"github.com/turnpage/turnpage/internal/middleware"
)

// RouterConfig wires every handler group plus the ambient middleware
// into one chi router.
type RouterConfig struct {
	Logger   *slog.Logger
	Metrics  *middleware.Metrics // Optional
	Sessions *auth.SessionService

	Books     *BookHandlers
	Reviews   *ReviewHandlers
	Events    *EventHandlers
	Search    *SearchHandlers
	Shop      *ShopHandlers
	Members   *MemberHandlers
	Community *CommunityHandlers
	Chat      *ChatHandlers
	Health    *HealthHandlers

	RateLimitStore middleware.RateLimitStore
	CORSOrigins    []string

	// MetricsHandler serves GET /metrics when set.
	MetricsHandler http.Handler
}

// NewRouter builds the API routing table. Middleware order: request ID,
// logging, metrics, CORS, then the global rate limit; search and chat
// carry stricter per-route limits.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.HTTPMetrics(cfg.Metrics))
	}
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins)))
	if cfg.RateLimitStore != nil {
		r.Use(middleware.RateLimiter(cfg.RateLimitStore, middleware.DefaultGlobalLimit(), middleware.IPKeyFunc()))
	}

	requireMember := RequireMember(cfg.Sessions)
	optionalMember := OptionalMember(cfg.Sessions)

	// Probes and metrics
	r.Get("/health", cfg.Health.Health)
	r.Get("/ready", cfg.Health.Ready)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	} else if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	}

	// Catalog
	r.Get("/books", cfg.Books.ListBooks)
	r.Get("/books/featured", cfg.Books.ListFeatured)
	r.Get("/books/{id}", cfg.Books.GetBook)
	r.With(requireMember).Post("/books/suggestions", cfg.Books.SuggestBook)

	// Reviews and replies
	r.Get("/books/{id}/reviews", cfg.Reviews.ListReviews)
	r.With(requireMember).Post("/books/{id}/reviews", cfg.Reviews.CreateReview)
	r.With(requireMember).Patch("/reviews/{id}", cfg.Reviews.UpdateReview)
	r.With(requireMember).Delete("/reviews/{id}", cfg.Reviews.DeleteReview)
	r.With(requireMember).Post("/reviews/{id}/like", cfg.Reviews.LikeReview)
	r.With(requireMember).Post("/reviews/{id}/unlike", cfg.Reviews.UnlikeReview)
	r.Get("/reviews/{id}/replies", cfg.Reviews.ListReplies)
	r.With(requireMember).Post("/reviews/{id}/replies", cfg.Reviews.CreateReply)
	r.With(requireMember).Delete("/replies/{id}", cfg.Reviews.DeleteReply)

	// Events
	r.Get("/events", cfg.Events.ListEvents)
	r.Get("/events/{id}", cfg.Events.GetEvent)
	r.Get("/events/{id}/calendar.ics", cfg.Events.Calendar)

	// Search, with its own tighter limit
	searchRoute := r.With()
	if cfg.RateLimitStore != nil {
		searchRoute = r.With(middleware.RateLimiter(cfg.RateLimitStore, middleware.DefaultSearchLimit(), middleware.IPKeyFunc()))
	}
	searchRoute.Get("/search", cfg.Search.Search)

	// Merch store
	r.Get("/products", cfg.Shop.ListProducts)
	r.Get("/products/{id}", cfg.Shop.GetProduct)
	r.With(requireMember).Get("/cart", cfg.Shop.GetCart)
	r.With(requireMember).Post("/cart", cfg.Shop.AddToCart)
	r.With(requireMember).Patch("/cart/{product_id}", cfg.Shop.UpdateCartItem)
	r.With(requireMember).Delete("/cart/{product_id}", cfg.Shop.RemoveCartItem)
	r.With(requireMember).Post("/checkout", cfg.Shop.Checkout)

	// Members
	r.Get("/auth/login", cfg.Members.Login)
	r.Get("/auth/callback", cfg.Members.Callback)
	r.With(requireMember).Get("/me", cfg.Members.Me)
	r.With(requireMember).Get("/me/dashboard", cfg.Members.Dashboard)

	// Community
	r.Get("/gallery", cfg.Community.ListGallery)
	r.Get("/testimonials", cfg.Community.ListTestimonials)

	// Club assistant, member identity optional, own rate limit
	chatRoute := r.With(optionalMember)
	if cfg.RateLimitStore != nil {
		chatRoute = r.With(optionalMember, middleware.RateLimiter(cfg.RateLimitStore, middleware.DefaultChatLimit(), middleware.IPKeyFunc()))
	}
	chatRoute.Get("/chat/ws", cfg.Chat.Chat)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		fail(w, r, http.StatusNotFound, ErrCodeNotFound, "Route not found")
	})

	return r
}
