package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bookforge/bookforge-backend/internal/bookgen"
	"github.com/bookforge/bookforge-backend/internal/domain"
	"github.com/bookforge/bookforge-backend/internal/platform/docrender"
	"github.com/bookforge/bookforge-backend/internal/platform/logger"
	"github.com/bookforge/bookforge-backend/internal/platform/openai"
	"github.com/bookforge/bookforge-backend/internal/realtime"
	"github.com/bookforge/bookforge-backend/internal/server/handlers"
	"github.com/bookforge/bookforge-backend/internal/server/middleware"
	"github.com/bookforge/bookforge-backend/internal/services"
)

type countingAI struct {
	calls int
	err   error
}

func (a *countingAI) GenerateJSON(context.Context, string, string, string, map[string]any) (map[string]any, error) {
	a.calls++
	return nil, a.err
}

func (a *countingAI) GenerateText(context.Context, string, string) (string, error) {
	a.calls++
	return "", a.err
}

func (a *countingAI) GenerateImage(context.Context, string) (openai.ImageGeneration, error) {
	a.calls++
	return openai.ImageGeneration{}, a.err
}

type stubRenderer struct{}

func (stubRenderer) RenderPDF(context.Context, docrender.RenderRequest) (*docrender.RenderResult, error) {
	return &docrender.RenderResult{PDFURL: "https://cdn.example/out.pdf"}, nil
}

type stubSubmissions struct {
	rows []*domain.SubmissionWithEmail
}

func (s *stubSubmissions) Submit(_ context.Context, sub *domain.FormSubmission) (*domain.FormSubmission, error) {
	sub.ID = uuid.New()
	sub.Status = domain.SubmissionPending
	return sub, nil
}

func (s *stubSubmissions) ListForAdmin(context.Context) ([]*domain.SubmissionWithEmail, error) {
	return s.rows, nil
}

func (s *stubSubmissions) UpdateStatus(_ context.Context, id uuid.UUID, status domain.SubmissionStatus) (*domain.FormSubmission, error) {
	return &domain.FormSubmission{ID: id, Status: status}, nil
}

type stubNotify struct{}

func (stubNotify) NotifySubmission(context.Context, *domain.FormSubmission) []services.RecipientResult {
	return []services.RecipientResult{{Recipient: "x@example.com", Role: "submitter", Success: true}}
}

type stubBilling struct {
	customers map[string]*domain.BillingCustomer
	subs      map[string]*domain.BillingSubscription
	orders    map[string]*domain.BillingOrder
}

func newStubBilling() *stubBilling {
	return &stubBilling{
		customers: map[string]*domain.BillingCustomer{},
		subs:      map[string]*domain.BillingSubscription{},
		orders:    map[string]*domain.BillingOrder{},
	}
}

func (s *stubBilling) UpsertCustomer(_ context.Context, _ *gorm.DB, c *domain.BillingCustomer) (*domain.BillingCustomer, error) {
	if existing, ok := s.customers[c.ProviderCustomerID]; ok {
		existing.Email = c.Email
		return existing, nil
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	s.customers[c.ProviderCustomerID] = c
	return c, nil
}

func (s *stubBilling) UpsertSubscription(_ context.Context, _ *gorm.DB, sub *domain.BillingSubscription) (*domain.BillingSubscription, error) {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	s.subs[sub.ProviderSubscriptionID] = sub
	return sub, nil
}

func (s *stubBilling) UpsertOrder(_ context.Context, _ *gorm.DB, o *domain.BillingOrder) (*domain.BillingOrder, error) {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	s.orders[o.ProviderOrderID] = o
	return o, nil
}

func (s *stubBilling) GetCustomerByUser(_ context.Context, _ *gorm.DB, userID uuid.UUID) (*domain.BillingCustomer, error) {
	for _, c := range s.customers {
		if c.UserID == userID {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubBilling) ListSubscriptionsByUser(context.Context, *gorm.DB, uuid.UUID) ([]*domain.BillingSubscription, error) {
	out := make([]*domain.BillingSubscription, 0, len(s.subs))
	for _, sub := range s.subs {
		out = append(out, sub)
	}
	return out, nil
}

func (s *stubBilling) ListOrdersByUser(context.Context, *gorm.DB, uuid.UUID) ([]*domain.BillingOrder, error) {
	out := make([]*domain.BillingOrder, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o)
	}
	return out, nil
}

func newTestRouter(t *testing.T, ai openai.Client) (*gin.Engine, *countingAI) {
	router, counting, _ := newTestRouterWithBilling(t, ai)
	return router, counting
}

func newTestRouterWithBilling(t *testing.T, ai openai.Client) (*gin.Engine, *countingAI, *stubBilling) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("PLATFORM_JWT_SECRET", "test-secret")
	t.Setenv("ADMIN_API_TOKEN", "admin-token")

	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	counting, _ := ai.(*countingAI)
	billing := newStubBilling()
	catalog := bookgen.DefaultStyleCatalog()

	var outlinePrimary bookgen.OutlineStrategy
	var contentPrimary bookgen.ContentStrategy
	var coverPrimary bookgen.CoverStrategy
	if ai != nil {
		outlinePrimary = &bookgen.ProxyOutline{AI: ai}
		contentPrimary = &bookgen.ProxyContent{AI: ai}
		coverPrimary = &bookgen.ProxyCover{AI: ai, Catalog: catalog}
	}

	outlineSvc := bookgen.NewOutlineService(outlinePrimary, nil, log)
	contentSvc := bookgen.NewContentService(contentPrimary, nil, log)
	coverSvc := bookgen.NewCoverService(coverPrimary, bookgen.NewLocalCover(catalog, log), nil, log)
	pdfSvc := bookgen.NewPDFService(stubRenderer{}, nil, log)

	hub := realtime.NewHub(log)
	buildSvc := services.NewBookBuildService(outlineSvc, contentSvc, coverSvc, pdfSvc, hub, log)
	subs := &stubSubmissions{}

	authMW, err := middleware.NewAuthMiddleware(log)
	if err != nil {
		t.Fatalf("auth middleware: %v", err)
	}
	adminMW, err := middleware.NewAdminMiddleware(log)
	if err != nil {
		t.Fatalf("admin middleware: %v", err)
	}

	router := NewRouter(RouterConfig{
		Log:               log,
		GenerateHandler:   handlers.NewGenerateHandler(outlineSvc, contentSvc, coverSvc, pdfSvc, buildSvc, log),
		SubmissionHandler: handlers.NewSubmissionHandler(subs, nil, log),
		AdminHandler:      handlers.NewAdminHandler(subs, log),
		NotifyHandler:     handlers.NewNotifyHandler(stubNotify{}, log),
		RealtimeHandler:   handlers.NewRealtimeHandler(hub, log),
		BillingHandler:    handlers.NewBillingHandler(billing, log),
		AuthMiddleware:    authMW,
		AdminMiddleware:   adminMW,
		ServiceName:       "bookforge-test",
	})
	return router, counting, billing
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestOutlineMissingFieldsNeverCallsUpstream(t *testing.T) {
	ai := &countingAI{}
	router, _ := newTestRouter(t, ai)

	cases := []map[string]any{
		{"author": "A", "book_idea": "I", "num_pages": 100},
		{"title": "T", "book_idea": "I", "num_pages": 100},
		{"title": "T", "author": "A", "num_pages": 100},
	}
	for i, body := range cases {
		w := doJSON(t, router, http.MethodPost, "/api/generate/outline", body, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("case %d: status %d, want 400", i, w.Code)
		}
		if !strings.Contains(w.Body.String(), "required") {
			t.Fatalf("case %d: body %q lacks a required-field message", i, w.Body.String())
		}
	}
	if ai.calls != 0 {
		t.Fatalf("upstream called %d times for invalid requests", ai.calls)
	}
}

func TestOutlineWrongMethodIs405(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	w := doJSON(t, router, http.MethodGet, "/api/generate/outline", nil, nil)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status %d, want 405", w.Code)
	}
}

func TestOutlineUnreachableUpstreamReturnsFallback(t *testing.T) {
	ai := &countingAI{err: fmt.Errorf("dial tcp: connection refused")}
	router, _ := newTestRouter(t, ai)

	w := doJSON(t, router, http.MethodPost, "/api/generate/outline", map[string]any{
		"title": "T", "author": "A", "book_idea": "I", "num_pages": 100,
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, want 200; body %s", w.Code, w.Body.String())
	}

	var toc bookgen.TableOfContents
	if err := json.Unmarshal(w.Body.Bytes(), &toc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(toc.Sections) != 3 {
		t.Fatalf("expected 3-section fallback, got %d", len(toc.Sections))
	}
	if toc.TotalEstimatedPages != "100" {
		t.Fatalf("total_estimated_pages = %q, want \"100\"", toc.TotalEstimatedPages)
	}
	if ai.calls != 1 {
		t.Fatalf("expected exactly one upstream attempt, got %d", ai.calls)
	}
}

func TestChapterNumberOutOfRangeIs400(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	toc := []map[string]any{{"name": "One"}, {"name": "Two"}}
	for _, n := range []int{0, 3} {
		w := doJSON(t, router, http.MethodPost, "/api/generate/chapter", map[string]any{
			"title": "T", "author": "A", "book_idea": "I",
			"toc": toc, "chapter_number": n,
		}, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("chapter_number %d: status %d, want 400", n, w.Code)
		}
		if !strings.Contains(w.Body.String(), "between 1 and 2") {
			t.Fatalf("chapter_number %d: body %q does not name the range", n, w.Body.String())
		}
	}
}

func TestChapterNumberDefaultsToFirst(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := doJSON(t, router, http.MethodPost, "/api/generate/chapter", map[string]any{
		"title": "T", "author": "A", "book_idea": "I",
		"toc": []map[string]any{{"name": "One"}, {"name": "Two"}},
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, want 200; body %s", w.Code, w.Body.String())
	}

	var ch bookgen.Chapter
	if err := json.Unmarshal(w.Body.Bytes(), &ch); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ch.Number != 1 {
		t.Fatalf("omitted chapter_number should default to 1, got %d", ch.Number)
	}
	if ch.Title != "One" {
		t.Fatalf("chapter title = %q, want first section", ch.Title)
	}
}

func TestChapterLocalModeNeverCallsUpstream(t *testing.T) {
	ai := &countingAI{}
	router, _ := newTestRouter(t, ai)

	w := doJSON(t, router, http.MethodPost, "/api/generate/chapter", map[string]any{
		"title": "T", "author": "A", "book_idea": "I",
		"toc":             []map[string]any{{"name": "One", "ideas": []string{"x"}}},
		"chapter_number":  1,
		"generation_mode": "local",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, want 200; body %s", w.Code, w.Body.String())
	}
	if ai.calls != 0 {
		t.Fatalf("generation_mode local called upstream %d times", ai.calls)
	}
}

func TestChapterWordCountMatchesContent(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := doJSON(t, router, http.MethodPost, "/api/generate/chapter", map[string]any{
		"title": "T", "author": "A", "book_idea": "I",
		"toc":            []map[string]any{{"name": "One", "ideas": []string{"x", "y"}}},
		"chapter_number": 1,
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d; body %s", w.Code, w.Body.String())
	}

	var ch bookgen.Chapter
	if err := json.Unmarshal(w.Body.Bytes(), &ch); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := len(strings.Fields(ch.Content)); ch.WordCount != got {
		t.Fatalf("word_count %d != token count %d", ch.WordCount, got)
	}
	want := (ch.WordCount + 299) / 300
	if ch.EstimatedPages != want {
		t.Fatalf("estimated_pages %d, want %d", ch.EstimatedPages, want)
	}
}

func TestCoverFallsBackWithoutCredential(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := doJSON(t, router, http.MethodPost, "/api/generate/cover", map[string]any{
		"title": "T", "author": "A", "book_description": "D",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d; body %s", w.Code, w.Body.String())
	}
	var res bookgen.CoverResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasPrefix(res.CoverURL, "data:image/png;base64,") {
		t.Fatal("expected locally rendered data URL")
	}
}

func TestAdminListWithoutTokenIs401(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := doJSON(t, router, http.MethodGet, "/api/admin/submissions", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", w.Code)
	}
	if strings.Contains(w.Body.String(), "submissions\":") {
		t.Fatal("unauthorized response leaked data")
	}

	w = doJSON(t, router, http.MethodGet, "/api/admin/submissions", nil, map[string]string{
		"Authorization": "Bearer wrong-token",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: status %d, want 401", w.Code)
	}
}

func TestAdminListWithTokenSucceeds(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := doJSON(t, router, http.MethodGet, "/api/admin/submissions", nil, map[string]string{
		"Authorization": "Bearer admin-token",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, want 200; body %s", w.Code, w.Body.String())
	}
}

func TestAdminStatusUpdateValidation(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	auth := map[string]string{"Authorization": "Bearer admin-token"}

	w := doJSON(t, router, http.MethodPut, "/api/admin/submissions", map[string]any{
		"id": uuid.NewString(), "status": "archived",
	}, auth)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid status: %d, want 400", w.Code)
	}

	w = doJSON(t, router, http.MethodPut, "/api/admin/submissions", map[string]any{
		"id": "not-a-uuid", "status": "completed",
	}, auth)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid id: %d, want 400", w.Code)
	}

	w = doJSON(t, router, http.MethodPut, "/api/admin/submissions", map[string]any{
		"id": uuid.NewString(), "status": "completed",
	}, auth)
	if w.Code != http.StatusOK {
		t.Fatalf("valid update: %d, want 200; body %s", w.Code, w.Body.String())
	}
}

func TestSubmissionCreateValidatesAndReturnsPending(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := doJSON(t, router, http.MethodPost, "/api/submissions", map[string]any{
		"email": "x@example.com", "topic": "a topic",
	}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing name: %d, want 400", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/api/submissions", map[string]any{
		"name": "Sam", "email": "x@example.com", "topic": "a topic",
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("status %d, want 201; body %s", w.Code, w.Body.String())
	}
	var sub domain.FormSubmission
	if err := json.Unmarshal(w.Body.Bytes(), &sub); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sub.Status != domain.SubmissionPending {
		t.Fatalf("status %q, want pending", sub.Status)
	}
}

func TestBuildAcceptedReturnsChannel(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := doJSON(t, router, http.MethodPost, "/api/generate/book", map[string]any{
		"title": "T", "author": "A", "book_idea": "I", "num_pages": 30,
	}, nil)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status %d, want 202; body %s", w.Code, w.Body.String())
	}
	var out struct {
		BuildID string `json:"build_id"`
		Channel string `json:"channel"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasPrefix(out.Channel, "build.") {
		t.Fatalf("channel %q", out.Channel)
	}
}

func TestBillingSyncRequiresAdminToken(t *testing.T) {
	router, _, billing := newTestRouterWithBilling(t, nil)

	w := doJSON(t, router, http.MethodPost, "/api/admin/billing/sync", map[string]any{
		"customer": map[string]any{"provider_customer_id": "cus_1", "user_id": uuid.NewString()},
	}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", w.Code)
	}
	if len(billing.customers) != 0 {
		t.Fatal("unauthorized sync wrote records")
	}
}

func TestBillingSyncUpsertsIdempotently(t *testing.T) {
	router, _, billing := newTestRouterWithBilling(t, nil)
	auth := map[string]string{"Authorization": "Bearer admin-token"}

	payload := map[string]any{
		"customer": map[string]any{
			"provider_customer_id": "cus_1",
			"user_id":              uuid.NewString(),
			"email":                "x@example.com",
		},
		"subscriptions": []map[string]any{
			{"provider_subscription_id": "sub_1", "status": "active"},
		},
		"orders": []map[string]any{
			{"provider_order_id": "ord_1", "amount_cents": 1999, "status": "paid"},
		},
	}

	for i := 0; i < 2; i++ {
		w := doJSON(t, router, http.MethodPost, "/api/admin/billing/sync", payload, auth)
		if w.Code != http.StatusOK {
			t.Fatalf("replay %d: status %d, want 200; body %s", i, w.Code, w.Body.String())
		}
	}

	if len(billing.customers) != 1 || len(billing.subs) != 1 || len(billing.orders) != 1 {
		t.Fatalf("replayed sync duplicated records: %d customers, %d subs, %d orders",
			len(billing.customers), len(billing.subs), len(billing.orders))
	}
	sub := billing.subs["sub_1"]
	if sub.CustomerID != billing.customers["cus_1"].ID {
		t.Fatal("subscription not attached to the synced customer")
	}
}

func TestBillingSyncValidatesProviderIDs(t *testing.T) {
	router, _, billing := newTestRouterWithBilling(t, nil)
	auth := map[string]string{"Authorization": "Bearer admin-token"}

	w := doJSON(t, router, http.MethodPost, "/api/admin/billing/sync", map[string]any{
		"customer": map[string]any{"user_id": uuid.NewString()},
	}, auth)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing provider_customer_id: status %d, want 400", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/api/admin/billing/sync", map[string]any{
		"customer": map[string]any{
			"provider_customer_id": "cus_2",
			"user_id":              uuid.NewString(),
		},
		"orders": []map[string]any{{"amount_cents": 500}},
	}, auth)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing provider_order_id: status %d, want 400", w.Code)
	}
	if len(billing.orders) != 0 {
		t.Fatal("invalid order was persisted")
	}
}

func TestProtectedRoutesRequireJWT(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	for _, path := range []string{"/api/submissions", "/api/billing/subscriptions", "/api/billing/orders"} {
		w := doJSON(t, router, http.MethodGet, path, nil, nil)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: status %d, want 401", path, w.Code)
		}
	}
}
