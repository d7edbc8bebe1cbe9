package frontend

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/jo-hoe/pixweb/internal/backend/database"
	"github.com/jo-hoe/pixweb/internal/catalog"
	"github.com/jo-hoe/pixweb/internal/common"
	"github.com/jo-hoe/pixweb/internal/core"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClient struct {
	t       *testing.T
	e       *echo.Echo
	cookies []*http.Cookie
}

func newTestClient(t *testing.T) *testClient {
	t.Helper()
	return newTestClientWithConfig(t, func(*core.ServiceConfig) {})
}

func newTestClientWithConfig(t *testing.T, configure func(*core.ServiceConfig)) *testClient {
	t.Helper()
	config := core.DefaultConfig()
	config.PaymentAppURL = "http://pay.test"
	configure(config)

	db, err := database.NewDatabase(database.TypeSQLite, ":memory:", "")
	require.NoError(t, err)
	coreService, err := core.NewCoreServiceWithDatabase(config, db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = coreService.Close() })

	e := common.NewEchoServer(common.NewLogger(io.Discard, "error", "text"))
	require.NoError(t, NewFrontendService(config, coreService, catalog.NewPlaceholders()).SetRoutes(e))
	return &testClient{t: t, e: e}
}

func (c *testClient) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c.e.ServeHTTP(rec, req)
	if setCookies := rec.Result().Cookies(); len(setCookies) > 0 {
		c.cookies = setCookies
	}
	return rec
}

func (c *testClient) get(target string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (c *testClient) postForm(target string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.Header.Set("HX-Request", "true")
	return c.do(req)
}

func (c *testClient) upload(fields map[string]string, files ...[]byte) *httptest.ResponseRecorder {
	c.t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		require.NoError(c.t, writer.WriteField(key, value))
	}
	for i, data := range files {
		part, err := writer.CreateFormFile("images", "image"+string(rune('a'+i))+".png")
		require.NoError(c.t, err)
		_, err = part.Write(data)
		require.NoError(c.t, err)
	}
	require.NoError(c.t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/htmx/upload/images", &body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	return c.do(req)
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func validFields(title, price string) map[string]string {
	return map[string]string{
		"title":       title,
		"description": "A test image",
		"category":    "Nature",
		"price":       price,
	}
}

var draftItemID = regexp.MustCompile(`data-id="([0-9a-f-]{36})"`)

func draftIDs(body string) []string {
	var ids []string
	for _, m := range draftItemID.FindAllStringSubmatch(body, -1) {
		ids = append(ids, m[1])
	}
	return ids
}

func TestStaticPages(t *testing.T) {
	client := newTestClient(t)
	tests := []struct {
		target string
		want   string
	}{
		{"/", "Welcome to PixWeb"},
		{"/about", "Our Mission"},
		{"/about", "Founder &amp; CEO"},
		{"/contact", "hello@pixweb.com"},
		{"/gallery", "Macro Photography"},
		{"/gallery/1", "Canon EOS R5"},
		{"/profile", "John Photographer"},
		{"/profile", "793"},
		{"/profile?edit=true", `name="bio"`},
		{"/upload", "No images added yet."},
		{"/upload", "Drag and drop images here"},
		{"/upload", "Up to 20 images, 10 MB each"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := client.get(tt.target)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestGallery_CategoryFilter(t *testing.T) {
	client := newTestClient(t)

	body := client.get("/gallery?category=Street").Body.String()
	assert.Contains(t, body, "Street Photography")
	assert.NotContains(t, body, "Beautiful Landscape")

	body = client.get("/gallery?category=Unknown").Body.String()
	assert.Contains(t, body, "No images in this category yet.")
}

func TestGalleryDetail_NotFound(t *testing.T) {
	client := newTestClient(t)
	rec := client.get("/gallery/42")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Image Not Found")
}

func TestContactForm(t *testing.T) {
	client := newTestClient(t)

	rec := client.postForm("/contact", url.Values{"name": {"Ann"}, "email": {"bad"}, "subject": {"general"}, "message": {"hi"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alert-error")
	assert.Contains(t, rec.Body.String(), `value="Ann"`, "invalid input is kept")

	rec = client.postForm("/contact", url.Values{"name": {"Ann"}, "email": {"ann@example.com"}, "subject": {"feedback"}, "message": {"Lovely site"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Thank you for your message!")
	assert.NotContains(t, rec.Body.String(), `value="Ann"`, "the form is cleared after sending")
}

func TestProfileEditAndSave(t *testing.T) {
	client := newTestClient(t)

	rec := client.get("/htmx/profile/edit")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `hx-post="/profile"`)

	rec = client.postForm("/profile", url.Values{"name": {"Ann <i>Lens</i>"}, "email": {"ann@example.com"}, "bio": {"Film"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Profile saved.")
	assert.Contains(t, client.get("/profile").Body.String(), "Ann Lens")

	rec = client.postForm("/profile", url.Values{"name": {""}, "email": {"ann@example.com"}})
	assert.Contains(t, rec.Body.String(), "alert-error")
	assert.Contains(t, client.get("/profile").Body.String(), "Ann Lens", "a rejected edit keeps the saved profile")
}

func TestUploadFlow(t *testing.T) {
	client := newTestClient(t)
	client.get("/upload")
	require.NotEmpty(t, client.cookies, "the upload page issues a draft cookie")

	rec := client.upload(validFields("First", "10"), testPNG(t), testPNG(t))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Added 2 images.")
	assert.Contains(t, rec.Body.String(), `hx-swap-oob="true"`)

	rec = client.upload(validFields("Second", ""), testPNG(t))
	require.Equal(t, http.StatusOK, rec.Code)

	page := client.get("/upload").Body.String()
	ids := draftIDs(page)
	require.Len(t, ids, 3)
	assert.Contains(t, page, "$10.00")
	assert.Contains(t, page, "Free")

	rec = client.do(httptest.NewRequest(http.MethodPost, "/htmx/upload/images/"+ids[2]+"/move?dir=up", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{ids[0], ids[2], ids[1]}, draftIDs(rec.Body.String()))

	rec = client.do(httptest.NewRequest(http.MethodPost, "/htmx/upload/images/"+ids[0]+"/move?dir=sideways", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = client.do(httptest.NewRequest(http.MethodDelete, "/htmx/upload/images/"+ids[1], nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{ids[0], ids[2]}, draftIDs(rec.Body.String()))

	rec = client.do(httptest.NewRequest(http.MethodPost, "/htmx/upload/link", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	link := regexp.MustCompile(`http://pay\.test/collection/([0-9a-z]{26})`).FindStringSubmatch(rec.Body.String())
	require.NotNil(t, link, rec.Body.String())

	rec = client.get("/collection/" + link[1])
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "2 images")
	assert.Contains(t, body, "Total Value: $10.00")
	assert.Contains(t, body, `src="data:image/png;base64,`)

	rec = client.do(httptest.NewRequest(http.MethodPost, "/htmx/collection/"+link[1]+"/purchase", nil))
	assert.Contains(t, rec.Body.String(), "Purchase all images for $10.00 would be implemented here.")

	rec = client.do(httptest.NewRequest(http.MethodPost, "/htmx/collection/"+link[1]+"/purchase/"+ids[2], nil))
	assert.Contains(t, rec.Body.String(), "Purchase functionality for image "+ids[2])
}

func TestUpload_ValidationLeavesDraftUnchanged(t *testing.T) {
	client := newTestClient(t)
	client.get("/upload")

	tests := []struct {
		name   string
		fields map[string]string
		files  [][]byte
		want   string
	}{
		{"missing title", validFields("", "1"), [][]byte{testPNG(t)}, "Please fill in title, description and category"},
		{"invalid price", validFields("x", "abc"), [][]byte{testPNG(t)}, "Please enter a valid price"},
		{"negative price", validFields("x", "-3"), [][]byte{testPNG(t)}, "Please enter a valid price"},
		{"no files", validFields("x", "1"), nil, "Please select at least one image."},
		{"not an image", validFields("x", "1"), [][]byte{[]byte("hello")}, "File 1 is not a supported image."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := client.upload(tt.fields, tt.files...)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
			assert.NotContains(t, rec.Body.String(), "hx-swap-oob")
		})
	}

	assert.Contains(t, client.get("/upload").Body.String(), "No images added yet.")
}

func TestGenerateLink_EmptyDraft(t *testing.T) {
	client := newTestClient(t)
	rec := client.do(httptest.NewRequest(http.MethodPost, "/htmx/upload/link", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please add at least one image before generating a link.")
}

func TestGenerateLink_SingleImage(t *testing.T) {
	client := newTestClient(t)
	client.get("/upload")
	client.upload(validFields("Solo", "2500"), testPNG(t))

	rec := client.do(httptest.NewRequest(http.MethodPost, "/htmx/upload/link", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Regexp(t, `http://pay\.test/\?id=[0-9a-f-]{36}&amp;collection=[0-9a-z]{26}&amp;price=2500`, rec.Body.String())
}

func TestCollection_NotFound(t *testing.T) {
	client := newTestClient(t)
	rec := client.get("/collection/unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Collection Not Found")

	rec = client.do(httptest.NewRequest(http.MethodPost, "/htmx/collection/unknown/purchase", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlaceholderAndIcon(t *testing.T) {
	client := newTestClient(t)

	rec := client.get("/placeholder/landscape?w=64")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, mimePNG, rec.Header().Get(echo.HeaderContentType))
	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())

	assert.Equal(t, http.StatusNotFound, client.get("/placeholder/nope").Code)

	rec = client.get("/icon.svg")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<svg")
}

func TestUpload_RejectsTooManyFiles(t *testing.T) {
	client := newTestClientWithConfig(t, func(c *core.ServiceConfig) { c.MaxUploadFiles = 2 })

	rec := client.upload(validFields("many", ""), testPNG(t), testPNG(t), testPNG(t))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please upload at most 2 images at a time.")

	rec = client.get("/upload")
	assert.Contains(t, rec.Body.String(), "No images added yet.")
}

func TestUpload_RejectsOversizedRequestBody(t *testing.T) {
	client := newTestClientWithConfig(t, func(c *core.ServiceConfig) {
		c.MaxUploadBytes = 1024
		c.MaxUploadFiles = 2
	})

	rec := client.upload(validFields("big", ""), bytes.Repeat([]byte{0xff}, 100<<10))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = client.upload(validFields("small", ""), testPNG(t))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Added 1 image.")
}

func TestUploadBodyLimit(t *testing.T) {
	service := &FrontendService{config: core.DefaultConfig()}
	assert.Equal(t, "204864K", service.uploadBodyLimit())
}
