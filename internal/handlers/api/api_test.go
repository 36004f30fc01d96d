package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corysite/internal/config"
	"corysite/internal/db"
	"corysite/internal/leads"
	"corysite/internal/logger"
	"corysite/internal/markdown"
	"corysite/internal/models"
	"corysite/internal/roi"
)

type envelope struct {
	Status string            `json:"status"`
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
	Data   json.RawMessage   `json:"data"`
}

func do(t *testing.T, app *fiber.App, method, target, body string) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestROIHandler_Calculate(t *testing.T) {
	app := fiber.New()
	app.Post("/api/roi", NewROIHandler(config.DefaultSiteConfig()).Calculate)

	payload, err := json.Marshal(roi.Default())
	require.NoError(t, err)

	status, env := do(t, app, http.MethodPost, "/api/roi", string(payload))
	require.Equal(t, fiber.StatusOK, status)

	var out models.ROIResponse
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, 7_981_800.0, out.Results.NetBenefit)
	assert.Equal(t, "$8.0M", out.Formatted.NetBenefit)
	assert.Equal(t, roi.Default(), out.Inputs)
}

func TestROIHandler_CalculateRejectsMissingFields(t *testing.T) {
	app := fiber.New()
	app.Post("/api/roi", NewROIHandler(config.DefaultSiteConfig()).Calculate)

	status, env := do(t, app, http.MethodPost, "/api/roi", `{"monthlyInquiries": 500, "contactRate": 45}`)

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "error", env.Status)
	assert.Contains(t, env.Fields, "avgTuition")
	assert.NotContains(t, env.Fields, "monthlyInquiries")
}

func TestROIHandler_CalculateRejectsBadJSON(t *testing.T) {
	app := fiber.New()
	app.Post("/api/roi", NewROIHandler(config.DefaultSiteConfig()).Calculate)

	status, env := do(t, app, http.MethodPost, "/api/roi", `{"monthlyInquiries": "lots"}`)

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "invalid request body", env.Error)
}

func TestROIHandler_Presets(t *testing.T) {
	site, err := config.ParseSiteConfig([]byte(`
roi:
  default_preset: small
  presets:
    small:
      label: Small college
      inputs: {monthly_inquiries: 100, contact_rate: 45, conversion_rate: 25, avg_tuition: 25000, staff_cost: 35, touches_per_lead: 8, cory_contact_rate: 92, response_uplift: 25, automation_coverage: 85}
    large:
      label: Large university
      inputs: {monthly_inquiries: 2000, contact_rate: 45, conversion_rate: 25, avg_tuition: 25000, staff_cost: 35, touches_per_lead: 8, cory_contact_rate: 92, response_uplift: 25, automation_coverage: 85}
`))
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/api/roi/presets", NewROIHandler(site).Presets)

	status, env := do(t, app, http.MethodGet, "/api/roi/presets", "")
	require.Equal(t, fiber.StatusOK, status)

	var presets []PresetResponse
	require.NoError(t, json.Unmarshal(env.Data, &presets))
	require.Len(t, presets, 2)
	assert.Equal(t, "large", presets[0].Key)
	assert.False(t, presets[0].Default)
	assert.Equal(t, "small", presets[1].Key)
	assert.True(t, presets[1].Default)
	assert.Equal(t, 100.0, presets[1].Inputs.MonthlyInquiries)
}

func newLeadService() (*leads.Service, *leads.MemoryStore) {
	store := leads.NewMemoryStore()
	return leads.NewService(store, logger.NewNoOpLogger(), leads.Options{}), store
}

func TestLeadHandler_Create(t *testing.T) {
	svc, store := newLeadService()
	app := fiber.New()
	app.Post("/api/leads", NewLeadHandler(svc).Create)

	status, env := do(t, app, http.MethodPost, "/api/leads",
		`{"source":"demo","name":"Dana Reyes","email":"dana@riverside.edu","institution":"Riverside","page_url":"/roi"}`)
	require.Equal(t, fiber.StatusCreated, status)

	var out models.LeadResponse
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.NotEmpty(t, out.ID)

	stored, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "Riverside", stored[0].Institution)
	assert.Equal(t, "/roi", stored[0].PageURL)
}

func TestLeadHandler_CreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"bad email", `{"source":"contact","name":"Dana","email":"not-an-email"}`, "email"},
		{"unknown source", `{"source":"fax","name":"Dana","email":"d@x.edu"}`, "source"},
		{"incomplete roi snapshot", `{"source":"roi-report","name":"Dana","email":"d@x.edu","roi":{"monthlyInquiries":500}}`, "roi.avgTuition"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newLeadService()
			app := fiber.New()
			app.Post("/api/leads", NewLeadHandler(svc).Create)

			status, env := do(t, app, http.MethodPost, "/api/leads", tt.body)

			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.Contains(t, env.Fields, tt.field)

			stored, _ := store.List(context.Background(), 0)
			assert.Empty(t, stored)
		})
	}
}

type failingCapturer struct{}

func (failingCapturer) Capture(ctx context.Context, lead *models.Lead) error {
	return errors.New("database down")
}

func TestLeadHandler_CreateStoreFailure(t *testing.T) {
	app := fiber.New()
	app.Post("/api/leads", NewLeadHandler(failingCapturer{}).Create)

	status, env := do(t, app, http.MethodPost, "/api/leads", `{"source":"demo","name":"A","email":"a@x.edu"}`)

	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "failed to save submission", env.Error)
}

type fakeContent struct {
	items   []models.Content
	filters []models.ContentFilter
}

func (f *fakeContent) ListPublishedContent(ctx context.Context, filter models.ContentFilter) ([]models.Content, error) {
	f.filters = append(f.filters, filter)
	var out []models.Content
	for _, item := range f.items {
		if item.Published && (filter.Type == "" || item.Type == filter.Type) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeContent) GetPublishedContentBySlug(ctx context.Context, slug string) (*models.Content, error) {
	for i := range f.items {
		if f.items[i].Slug == slug && f.items[i].Published {
			return &f.items[i], nil
		}
	}
	return nil, db.ErrContentNotFound
}

func newContentApp(t *testing.T) (*fiber.App, *fakeContent, *[]string) {
	t.Helper()
	store := &fakeContent{items: []models.Content{
		{Slug: "speed-to-lead", Title: "Speed to lead", Type: models.TypeGuide, Body: "## Why\n\nCall in `90s`.", Published: true},
		{Slug: "riverside", Title: "Riverside case study", Type: models.TypeCaseStudy, Body: "**+18%** enrollments", Published: true},
		{Slug: "draft", Title: "Draft", Type: models.TypeArticle, Body: "wip"},
	}}

	var mu sync.Mutex
	var views []string
	record := func(slug string) {
		mu.Lock()
		defer mu.Unlock()
		views = append(views, slug)
	}

	h := NewContentHandler(store, markdown.New(markdown.Options{InlineCode: true}), record)
	app := fiber.New()
	app.Get("/api/content", h.List)
	app.Get("/api/content/:slug", h.Get)
	return app, store, &views
}

func TestContentHandler_List(t *testing.T) {
	app, store, _ := newContentApp(t)

	status, env := do(t, app, http.MethodGet, "/api/content?type=guide&tag=SLA&limit=500", "")
	require.Equal(t, fiber.StatusOK, status)

	var items []models.ContentSummary
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "speed-to-lead", items[0].Slug)
	assert.NotContains(t, string(env.Data), "Call in")

	require.Len(t, store.filters, 1)
	assert.Equal(t, "SLA", store.filters[0].Tag)
	assert.Equal(t, maxContentLimit, store.filters[0].Limit)
}

func TestContentHandler_Get(t *testing.T) {
	app, _, views := newContentApp(t)

	status, env := do(t, app, http.MethodGet, "/api/content/speed-to-lead", "")
	require.Equal(t, fiber.StatusOK, status)

	var detail models.ContentDetail
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, "<h2>Why</h2><p>Call in <code>90s</code>.</p>", detail.HTML)
	assert.Equal(t, []string{"speed-to-lead"}, *views)
}

func TestContentHandler_GetDraftIsNotFound(t *testing.T) {
	app, _, views := newContentApp(t)

	status, env := do(t, app, http.MethodGet, "/api/content/draft", "")

	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "content not found", env.Error)
	assert.Empty(t, *views)
}

type fakeChatBackend struct {
	reply  string
	err    error
	posted []ChatMessage
}

func (f *fakeChatBackend) Post(ctx context.Context, url string, payload any) ([]byte, error) {
	f.posted = append(f.posted, payload.(ChatMessage))
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.reply), nil
}

func TestChatHandler_Send(t *testing.T) {
	tests := []struct {
		name         string
		backend      *fakeChatBackend
		webhookURL   string
		wantReply    string
		wantFallback bool
	}{
		{"json reply", &fakeChatBackend{reply: `{"reply":"Hi there!"}`}, "https://chat.example.com", "Hi there!", false},
		{"output field", &fakeChatBackend{reply: `{"output":"Hello"}`}, "https://chat.example.com", "Hello", false},
		{"plain text", &fakeChatBackend{reply: "Plain hello\n"}, "https://chat.example.com", "Plain hello", false},
		{"backend error", &fakeChatBackend{err: errors.New("timeout")}, "https://chat.example.com", fallbackReply, true},
		{"empty reply", &fakeChatBackend{reply: `{}`}, "https://chat.example.com", fallbackReply, true},
		{"not configured", &fakeChatBackend{}, "", fallbackReply, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Post("/api/chat", NewChatHandler(tt.backend, tt.webhookURL, nil, logger.NewNoOpLogger()).Send)

			status, env := do(t, app, http.MethodPost, "/api/chat", `{"sessionId":"s1","message":"  How much does it cost?  "}`)
			require.Equal(t, fiber.StatusOK, status)

			var reply ChatReply
			require.NoError(t, json.Unmarshal(env.Data, &reply))
			assert.Equal(t, tt.wantReply, reply.Reply)
			assert.Equal(t, tt.wantFallback, reply.Fallback)

			if tt.webhookURL != "" {
				require.Len(t, tt.backend.posted, 1)
				assert.Equal(t, "How much does it cost?", tt.backend.posted[0].Message)
			} else {
				assert.Empty(t, tt.backend.posted)
			}
		})
	}
}

func TestChatHandler_SendValidation(t *testing.T) {
	app := fiber.New()
	app.Post("/api/chat", NewChatHandler(nil, "", nil, logger.NewNoOpLogger()).Send)

	status, env := do(t, app, http.MethodPost, "/api/chat", `{"sessionId":"s1","message":"   "}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, env.Fields, "message")

	status, env = do(t, app, http.MethodPost, "/api/chat", `{"message":"hello"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, env.Fields, "sessionId")

	status, _ = do(t, app, http.MethodPost, "/api/chat", `{"sessionId":"s1","message":"`+strings.Repeat("a", maxChatMessage+1)+`"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestChatHandler_SendCapturesLeadWithEmail(t *testing.T) {
	svc, store := newLeadService()
	app := fiber.New()
	app.Post("/api/chat", NewChatHandler(nil, "", svc, logger.NewNoOpLogger()).Send)

	status, _ := do(t, app, http.MethodPost, "/api/chat",
		`{"sessionId":"s1","message":"Can we get pricing?","name":"Dana","email":"dana@riverside.edu","pageUrl":"/pricing"}`)
	require.Equal(t, fiber.StatusOK, status)

	status, _ = do(t, app, http.MethodPost, "/api/chat", `{"sessionId":"s2","message":"just browsing"}`)
	require.Equal(t, fiber.StatusOK, status)

	stored, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, models.SourceChat, stored[0].Source)
	assert.Equal(t, "Can we get pricing?", stored[0].Message)
	assert.Equal(t, "/pricing", stored[0].PageURL)
}
