package paymentapp

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/jo-hoe/pixweb/internal/backend/database"
	"github.com/jo-hoe/pixweb/internal/catalog"
	"github.com/jo-hoe/pixweb/internal/common"
	"github.com/jo-hoe/pixweb/internal/core"
	"github.com/jo-hoe/pixweb/internal/payment"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sessionPath = regexp.MustCompile(`hx-get="/htmx/checkout/([^"]+)"`)

type testApp struct {
	e           *echo.Echo
	coreService *core.CoreService
	checkout    *payment.Checkout
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	config := core.DefaultConfig()
	config.PaymentAppURL = "http://pay.test"

	db, err := database.NewDatabase(database.TypeSQLite, ":memory:", "")
	require.NoError(t, err)
	coreService, err := core.NewCoreServiceWithDatabase(config, db)
	require.NoError(t, err)
	checkout := payment.NewCheckout(20*time.Millisecond, time.Minute)
	t.Cleanup(func() {
		checkout.Close()
		_ = coreService.Close()
	})

	e := common.NewEchoServer(common.NewLogger(io.Discard, "error", "text"))
	service := NewPaymentAppService(config, coreService, checkout, catalog.NewPlaceholders())
	require.NoError(t, service.SetRoutes(e))
	return &testApp{e: e, coreService: coreService, checkout: checkout}
}

func (a *testApp) get(target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func (a *testApp) post(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) storeCollection(t *testing.T, images ...core.CollectionImage) *core.Collection {
	t.Helper()
	collection, _, err := a.coreService.CreateCollection(context.Background(), images, "USD")
	require.NoError(t, err)
	return collection
}

func storedImage(id string, price core.Price) core.CollectionImage {
	return core.CollectionImage{
		ID:          id,
		Preview:     "data:image/png;base64,iVBORw0KGgo=",
		Title:       "Stored " + id,
		Description: "uploaded image",
		Category:    "Nature",
		Price:       price,
	}
}

func TestSinglePage(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name     string
		target   string
		status   int
		contains []string
	}{
		{"default image", "/", http.StatusOK, []string{"Beautiful Landscape", "KES 2,500", `name="kind" value="single"`}},
		{"catalog image", "/?id=2&collection=abc123&price=3000", http.StatusOK, []string{"Urban Architecture", "KES 3,000", "Jane Smith"}},
		{"unknown image", "/?id=missing", http.StatusNotFound, []string{"Image Not Found", "The requested image could not be found."}},
		{"unknown collection", "/?id=missing&collection=missing", http.StatusNotFound, []string{"Image Not Found"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.get(tt.target)
			assert.Equal(t, tt.status, rec.Code)
			for _, s := range tt.contains {
				assert.Contains(t, rec.Body.String(), s)
			}
		})
	}
}

func TestSinglePageFallsBackToStoredCollection(t *testing.T) {
	app := newTestApp(t)
	collection := app.storeCollection(t, storedImage("img-a", 1250))

	rec := app.get("/?id=img-a&collection=" + collection.ID + "&price=12.50")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Stored img-a")
	assert.Contains(t, body, "$12.50")
	assert.Contains(t, body, `src="data:image/png;base64,iVBORw0KGgo="`)

	rec = app.get("/?id=other&collection=" + collection.ID)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCollectionPage(t *testing.T) {
	app := newTestApp(t)

	rec := app.get("/collection/abc123")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Mountain Sunset")
	assert.Contains(t, body, "City Lights")
	assert.Contains(t, body, "KES 5,500")
	assert.Contains(t, body, "Select images to purchase")

	stored := app.storeCollection(t, storedImage("a", 0), storedImage("b", 0))
	rec = app.get("/collection/" + stored.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Image Collection")
	assert.Equal(t, 2, strings.Count(rec.Body.String(), ">Free<"))

	rec = app.get("/collection/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Collection Not Found")
}

func TestSelectionSummary(t *testing.T) {
	app := newTestApp(t)

	rec := app.post("/htmx/collection/abc123/summary", url.Values{"item": {"2"}})
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Selected Images (1)")
	assert.Contains(t, body, "City Lights")
	assert.Contains(t, body, "KES 3,000")
	assert.NotContains(t, body, "disabled")

	rec = app.post("/htmx/collection/abc123/summary", url.Values{"item": {"1", "2", "unknown"}})
	assert.Contains(t, rec.Body.String(), "Selected Images (2)")
	assert.Contains(t, rec.Body.String(), "KES 5,500")

	rec = app.post("/htmx/collection/abc123/summary", url.Values{})
	assert.Contains(t, rec.Body.String(), "Selected Images (0)")
	assert.Contains(t, rec.Body.String(), "disabled")

	rec = app.post("/htmx/collection/missing/summary", url.Values{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckoutRejectsEmptySelection(t *testing.T) {
	app := newTestApp(t)

	rec := app.post("/htmx/checkout", url.Values{"kind": {"collection"}, "collection": {"abc123"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please select at least one image.")
	assert.NotContains(t, rec.Body.String(), "checkout-status")
}

func TestCheckoutBadRequests(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name   string
		form   url.Values
		status int
	}{
		{"missing kind", url.Values{"collection": {"abc123"}}, http.StatusBadRequest},
		{"unknown collection", url.Values{"kind": {"collection"}, "collection": {"missing"}}, http.StatusNotFound},
		{"unknown image", url.Values{"kind": {"single"}, "item": {"missing"}}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, app.post("/htmx/checkout", tt.form).Code)
		})
	}

	assert.Equal(t, http.StatusNotFound, app.get("/htmx/checkout/unknown").Code)
}

func TestCheckoutFlow(t *testing.T) {
	app := newTestApp(t)

	rec := app.post("/htmx/checkout", url.Values{
		"kind":       {"collection"},
		"collection": {"abc123"},
		"item":       {"1", "2"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `data-state="processing"`)
	assert.Contains(t, body, "Processing payment of KES 5,500")

	match := sessionPath.FindStringSubmatch(body)
	require.Len(t, match, 2)
	sessionID := match[1]

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	session, err := app.checkout.Wait(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, payment.StateSuccess, session.State)
	require.Len(t, session.Transitions, 2)
	assert.Equal(t, payment.StateProcessing, session.Transitions[0].To)

	rec = app.get("/htmx/checkout/" + sessionID)
	require.Equal(t, http.StatusOK, rec.Code)
	body = rec.Body.String()
	assert.Contains(t, body, `data-state="success"`)
	assert.Contains(t, body, "Payment successful! Your images are unlocked.")
	assert.Contains(t, body, `id="img-1" hx-swap-oob="true"`)
	assert.Contains(t, body, `id="img-2" hx-swap-oob="true"`)
	assert.NotContains(t, body, "hx-get")
}

func TestCheckoutUsesServerPrices(t *testing.T) {
	app := newTestApp(t)
	collection := app.storeCollection(t, storedImage("img-a", 1250), storedImage("img-b", 750))

	rec := app.post("/htmx/checkout", url.Values{
		"kind":       {"single"},
		"collection": {collection.ID},
		"item":       {"img-b"},
		"price":      {"0"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Processing payment of $7.50")
}

func TestPlaceholder(t *testing.T) {
	app := newTestApp(t)

	rec := app.get("/placeholder/landscape?w=64")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))

	assert.Equal(t, http.StatusNotFound, app.get("/placeholder/unknown").Code)
}
