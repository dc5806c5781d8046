package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/turnpage/turnpage/internal/auth"
	"github.com/turnpage/turnpage/internal/book"
	"github.com/turnpage/turnpage/internal/community"
	"github.com/turnpage/turnpage/internal/event"
	"github.com/turnpage/turnpage/internal/review"
	"github.com/turnpage/turnpage/internal/search"
	"github.com/turnpage/turnpage/internal/shop"
)

// testEnv wires the full router over in-memory repositories.
type testEnv struct {
	router   http.Handler
	books    *book.InMemoryRepository
	reviews  *review.InMemoryRepository
	events   *event.InMemoryRepository
	products *shop.InMemoryProductRepository
	sessions *auth.SessionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	books := book.NewInMemoryRepository()
	reviews := review.NewInMemoryRepository()
	events := event.NewInMemoryRepository()
	products := shop.NewInMemoryProductRepository()
	carts := shop.NewInMemoryCartRepository()
	sessions := auth.NewSessionService("router-test-secret")
	oauth := auth.NewOAuthClient("http://idp.test", "client", "secret", "http://app.test/auth/callback")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := NewRouter(RouterConfig{
		Logger:    logger,
		Sessions:  sessions,
		Books:     NewBookHandlers(books, reviews, nil),
		Reviews:   NewReviewHandlers(reviews, books),
		Events:    NewEventHandlers(events),
		Search:    NewSearchHandlers(search.NewService(books, nil)),
		Shop:      NewShopHandlers(products, carts, nil),
		Members:   NewMemberHandlers(oauth, sessions, reviews, books, false),
		Community: NewCommunityHandlers(&community.InMemoryRepository{}),
		Chat:      NewChatHandlers(nil, books, nil, nil),
		Health:    NewHealthHandlers(HealthHandlersConfig{}),
	})

	return &testEnv{
		router:   router,
		books:    books,
		reviews:  reviews,
		events:   events,
		products: products,
		sessions: sessions,
	}
}

// do runs a request through the router. A non-empty token is attached as
// a bearer credential.
func (env *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(buf)
	}

	r := httptest.NewRequest(method, path, reader)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, r)
	return w
}

func (env *testEnv) token(t *testing.T, memberID string) string {
	t.Helper()
	token, err := env.sessions.Issue(memberID, memberID+"@example.com", "")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

// decodeError pulls the code out of the error envelope.
func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error envelope: %v (body %q)", err, w.Body.String())
	}
	return envelope.Error.Code
}

func TestRouter_ListBooks(t *testing.T) {
	env := newTestEnv(t)
	env.books.Add(book.Book{Title: "Beartown"})
	env.books.Add(book.Book{Title: "Anxious People"})

	w := env.do(t, http.MethodGet, "/books", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var books []book.Book
	if err := json.Unmarshal(w.Body.Bytes(), &books); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(books) != 2 || books[0].Title != "Anxious People" {
		t.Errorf("books = %+v", books)
	}
}

func TestRouter_GetBook(t *testing.T) {
	env := newTestEnv(t)
	b := env.books.Add(book.Book{Title: "The Maid"})
	env.reviews.Insert(t.Context(), &review.Review{BookID: b.ID, Rating: 4, Body: "Fun"})

	w := env.do(t, http.MethodGet, "/books/"+b.ID, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var detail BookDetail
	if err := json.Unmarshal(w.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if detail.Title != "The Maid" {
		t.Errorf("Title = %q", detail.Title)
	}
	if len(detail.Reviews) != 1 {
		t.Errorf("Reviews = %d", len(detail.Reviews))
	}
	if detail.Stats.AverageRating != 4.0 {
		t.Errorf("AverageRating = %v", detail.Stats.AverageRating)
	}
}

func TestRouter_GetBook_NotFound(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/books/missing", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	if code := decodeError(t, w); code != ErrCodeNotFound {
		t.Errorf("code = %q", code)
	}
}

func TestRouter_CreateReview_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	b := env.books.Add(book.Book{Title: "Verity"})

	w := env.do(t, http.MethodPost, "/books/"+b.ID+"/reviews", "", map[string]any{
		"rating": 5, "body": "Could not put it down",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if code := decodeError(t, w); code != ErrCodeAuthFailed {
		t.Errorf("code = %q", code)
	}
}

func TestRouter_ReviewLifecycle(t *testing.T) {
	env := newTestEnv(t)
	b := env.books.Add(book.Book{Title: "Verity"})
	owner := env.token(t, "member-1")
	other := env.token(t, "member-2")

	// Create
	w := env.do(t, http.MethodPost, "/books/"+b.ID+"/reviews", owner, map[string]any{
		"rating": 5, "body": "Could not put it down", "reviewer": "Avid Reader",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status = %d: %s", w.Code, w.Body.String())
	}
	var created review.Review
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.OwnerID != "member-1" || created.Reviewer != "Avid Reader" {
		t.Errorf("created = %+v", created)
	}

	// Another member cannot edit it.
	w = env.do(t, http.MethodPatch, "/reviews/"+created.ID, other, map[string]any{"body": "mine now"})
	if w.Code != http.StatusForbidden {
		t.Errorf("foreign edit: status = %d, want 403", w.Code)
	}

	// The owner can.
	w = env.do(t, http.MethodPatch, "/reviews/"+created.ID, owner, map[string]any{"rating": 4})
	if w.Code != http.StatusOK {
		t.Fatalf("owner edit: status = %d: %s", w.Code, w.Body.String())
	}
	var updated review.Review
	json.Unmarshal(w.Body.Bytes(), &updated)
	if updated.Rating != 4 {
		t.Errorf("Rating = %v after edit", updated.Rating)
	}

	// And delete.
	w = env.do(t, http.MethodDelete, "/reviews/"+created.ID, owner, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete: status = %d", w.Code)
	}
}

func TestRouter_CreateReview_InvalidRating(t *testing.T) {
	env := newTestEnv(t)
	b := env.books.Add(book.Book{Title: "Verity"})
	token := env.token(t, "member-1")

	w := env.do(t, http.MethodPost, "/books/"+b.ID+"/reviews", token, map[string]any{
		"rating": 4.5, "body": "Half stars are not a thing here",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if code := decodeError(t, w); code != ErrCodeInvalidRating {
		t.Errorf("code = %q", code)
	}
}

func TestRouter_LikeUnlike(t *testing.T) {
	env := newTestEnv(t)
	rv := &review.Review{BookID: "b1", Rating: 5, Body: "Liked"}
	env.reviews.Insert(t.Context(), rv)
	token := env.token(t, "member-1")

	// Anonymous visitors cannot vote.
	if w := env.do(t, http.MethodPost, "/reviews/"+rv.ID+"/like", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous like: status = %d", w.Code)
	}

	w := env.do(t, http.MethodPost, "/reviews/"+rv.ID+"/like", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("like: status = %d", w.Code)
	}
	var liked review.Review
	json.Unmarshal(w.Body.Bytes(), &liked)
	if liked.Likes != 1 {
		t.Errorf("Likes = %d, want 1", liked.Likes)
	}

	w = env.do(t, http.MethodPost, "/reviews/"+rv.ID+"/unlike", token, nil)
	var unliked review.Review
	json.Unmarshal(w.Body.Bytes(), &unliked)
	if unliked.Likes != 0 {
		t.Errorf("Likes = %d, want 0", unliked.Likes)
	}
}

func TestRouter_Replies(t *testing.T) {
	env := newTestEnv(t)
	rv := &review.Review{BookID: "b1", Rating: 5, Body: "Discuss"}
	env.reviews.Insert(t.Context(), rv)
	author := env.token(t, "member-1")

	w := env.do(t, http.MethodPost, "/reviews/"+rv.ID+"/replies", author, map[string]any{
		"content": "Completely agree about the ending.",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create reply: status = %d: %s", w.Code, w.Body.String())
	}
	var reply review.Reply
	json.Unmarshal(w.Body.Bytes(), &reply)
	if reply.AuthorID != "member-1" || reply.AuthorName != "Member" {
		t.Errorf("reply = %+v", reply)
	}

	// Another member cannot delete it.
	other := env.token(t, "member-2")
	if w := env.do(t, http.MethodDelete, "/replies/"+reply.ID, other, nil); w.Code != http.StatusForbidden {
		t.Errorf("foreign delete: status = %d", w.Code)
	}
	if w := env.do(t, http.MethodDelete, "/replies/"+reply.ID, author, nil); w.Code != http.StatusNoContent {
		t.Errorf("author delete: status = %d", w.Code)
	}
}

func TestRouter_Search(t *testing.T) {
	env := newTestEnv(t)
	env.books.Add(book.Book{Title: "Dragon Keep", Genre: "Fantasy", Summary: "Dragons guard a keep."})

	t.Run("missing query", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/search", "", nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d", w.Code)
		}
	})

	t.Run("no matches", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/search?q=quantum+cooking", "", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", w.Code, w.Body.String())
		}
		var resp SearchResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !resp.NoMatches || len(resp.Results) != 0 {
			t.Errorf("resp = %+v", resp)
		}
	})

	t.Run("match", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/search?q=Dragon+Keep", "", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", w.Code, w.Body.String())
		}
		var resp SearchResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.NoMatches || len(resp.Results) == 0 {
			t.Fatalf("resp = %+v", resp)
		}
		if resp.Results[0].Title != "Dragon Keep" {
			t.Errorf("top result = %q", resp.Results[0].Title)
		}
	})
}

func TestRouter_CartFlow(t *testing.T) {
	env := newTestEnv(t)
	env.products.AddProduct(shop.Product{ID: "p1", Name: "Club Tote", Price: 15.00, InStock: true})
	token := env.token(t, "member-1")

	// Cart endpoints require a session.
	if w := env.do(t, http.MethodGet, "/cart", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous cart: status = %d", w.Code)
	}

	w := env.do(t, http.MethodPost, "/cart", token, map[string]any{"product_id": "p1", "quantity": 2})
	if w.Code != http.StatusOK {
		t.Fatalf("add: status = %d: %s", w.Code, w.Body.String())
	}
	var cart shop.Cart
	json.Unmarshal(w.Body.Bytes(), &cart)
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 2 {
		t.Fatalf("cart = %+v", cart)
	}

	// Unknown products cannot be added.
	if w := env.do(t, http.MethodPost, "/cart", token, map[string]any{"product_id": "ghost", "quantity": 1}); w.Code != http.StatusNotFound {
		t.Errorf("unknown product: status = %d", w.Code)
	}

	w = env.do(t, http.MethodPatch, "/cart/p1", token, map[string]any{"quantity": 5})
	json.Unmarshal(w.Body.Bytes(), &cart)
	if cart.Items[0].Quantity != 5 {
		t.Errorf("quantity = %d after update", cart.Items[0].Quantity)
	}

	w = env.do(t, http.MethodDelete, "/cart/p1", token, nil)
	json.Unmarshal(w.Body.Bytes(), &cart)
	if len(cart.Items) != 0 {
		t.Errorf("cart not emptied: %+v", cart)
	}
}

func TestRouter_Checkout_Unconfigured(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "member-1")

	w := env.do(t, http.MethodPost, "/checkout", token, nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 when payments are not configured", w.Code)
	}
}

func TestRouter_Events(t *testing.T) {
	env := newTestEnv(t)
	env.events.Add(event.Event{Title: "March Meetup", Date: "2030-03-14", Time: "7:00 PM", Location: "Zoom link: https://zoom.us/j/1"})
	env.events.Add(event.Event{Title: "Old Session", Date: "2020-01-01", Location: "Library"})

	w := env.do(t, http.MethodGet, "/events", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var events []event.Event
	if err := json.Unmarshal(w.Body.Bytes(), &events); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len = %d", len(events))
	}
	if events[0].Title != "March Meetup" || !events[0].IsOnline {
		t.Errorf("events[0] = %+v", events[0])
	}
	if !events[1].IsPast {
		t.Errorf("events[1] should be past: %+v", events[1])
	}
}

func TestRouter_EventCalendar(t *testing.T) {
	env := newTestEnv(t)
	e := env.events.Add(event.Event{Title: "Author Q&A", Date: "2030-05-02", Time: "6:00 PM", Location: "Main Library"})

	w := env.do(t, http.MethodGet, "/events/"+e.ID+"/calendar.ics", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/calendar; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("BEGIN:VEVENT")) {
		t.Error("missing VEVENT block")
	}
}

func TestRouter_Dashboard(t *testing.T) {
	env := newTestEnv(t)
	env.reviews.Insert(t.Context(), &review.Review{BookID: "b1", Rating: 5, Body: "x", OwnerID: "member-1"})
	env.reviews.Insert(t.Context(), &review.Review{BookID: "b2", Rating: 3, Body: "y", OwnerID: "member-1"})
	env.reviews.Insert(t.Context(), &review.Review{BookID: "b1", Rating: 1, Body: "z", OwnerID: "member-2"})
	token := env.token(t, "member-1")

	w := env.do(t, http.MethodGet, "/me/dashboard", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var dash MemberDashboard
	if err := json.Unmarshal(w.Body.Bytes(), &dash); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dash.Stats.ReviewsWritten != 2 || dash.Stats.BooksReviewed != 2 {
		t.Errorf("stats = %+v", dash.Stats)
	}
	if dash.Stats.AverageRating != 4.0 {
		t.Errorf("AverageRating = %v", dash.Stats.AverageRating)
	}
	if len(dash.Reviews) != 2 {
		t.Errorf("Reviews = %d", len(dash.Reviews))
	}
}

func TestRouter_DashboardMissingBook(t *testing.T) {
	env := newTestEnv(t)
	b := env.books.Add(book.Book{Title: "The Night Library"})
	env.reviews.Insert(t.Context(), &review.Review{BookID: b.ID, Rating: 4, Body: "x", OwnerID: "member-1"})
	env.reviews.Insert(t.Context(), &review.Review{BookID: "deleted-book", Rating: 2, Body: "y", OwnerID: "member-1"})
	token := env.token(t, "member-1")

	w := env.do(t, http.MethodGet, "/me/dashboard", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var dash MemberDashboard
	if err := json.Unmarshal(w.Body.Bytes(), &dash); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(dash.Reviews) != 2 {
		t.Fatalf("Reviews = %d, want 2", len(dash.Reviews))
	}
	titles := make(map[string]string, len(dash.Reviews))
	for _, rv := range dash.Reviews {
		titles[rv.BookID] = rv.BookTitle
	}
	if titles[b.ID] != "The Night Library" {
		t.Errorf("resolved title = %q", titles[b.ID])
	}
	if titles["deleted-book"] != "Book Not Found" {
		t.Errorf("missing book title = %q, want the placeholder", titles["deleted-book"])
	}
}

func TestRouter_Health(t *testing.T) {
	env := newTestEnv(t)
	if w := env.do(t, http.MethodGet, "/health", "", nil); w.Code != http.StatusOK {
		t.Errorf("/health status = %d", w.Code)
	}
	if w := env.do(t, http.MethodGet, "/ready", "", nil); w.Code != http.StatusOK {
		t.Errorf("/ready status = %d with no checkers", w.Code)
	}
}

func TestRouter_NotFound(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/nope", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	if code := decodeError(t, w); code != ErrCodeNotFound {
		t.Errorf("code = %q", code)
	}
}
