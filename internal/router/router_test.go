package router

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"catalog-cms/internal/handler"
	"catalog-cms/internal/media"
	"catalog-cms/internal/repository"
	"catalog-cms/internal/service"
	"catalog-cms/internal/static"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const onePixelPNG = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

type site struct {
	handler   http.Handler
	publicDir string
}

func setupSite(t *testing.T, apiKey, adminPassword string) *site {
	t.Helper()
	logger := zerolog.Nop()

	base := t.TempDir()
	publicDir := filepath.Join(base, "public")
	require.NoError(t, os.MkdirAll(filepath.Join(publicDir, "admin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(publicDir, "index.html"), []byte("<h1>home</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(publicDir, "admin", "index.html"), []byte("<h1>admin</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(base, "secret.txt"), []byte("secret"), 0o644))

	repo := repository.NewFileRepository(filepath.Join(publicDir, "data", "products.json"), logger)
	writer := media.NewFileWriter(filepath.Join(publicDir, "images"), logger)
	catalog := service.NewCatalogService(repo, media.NewSaver(writer, "images", logger), logger)

	staticHandler, err := static.NewHandler(publicDir, logger)
	require.NoError(t, err)

	h := New(
		handler.NewProductHandler(catalog, 1<<20, logger),
		handler.NewAuthHandler("admin", adminPassword, logger),
		staticHandler,
		apiKey,
		logger,
	)

	return &site{handler: h, publicDir: publicDir}
}

func (s *site) do(t *testing.T, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func decodeObject(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestRouter_ProductLifecycle(t *testing.T) {
	s := setupSite(t, "", "")

	w := s.do(t, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/products", `{"category":"vases","name":"Test"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	first := decodeObject(t, w)
	assert.Equal(t, "vases-1", first["id"])
	assert.Equal(t, []interface{}{}, first["images"])

	w = s.do(t, http.MethodPost, "/api/products", `{"category":"vases","name":"Test"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "vases-2", decodeObject(t, w)["id"])

	w = s.do(t, http.MethodGet, "/api/products/vases-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, first, decodeObject(t, w))

	w = s.do(t, http.MethodPut, "/api/products/vases-1", `{"price_from":500,"id":"other"}`)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decodeObject(t, w)
	assert.Equal(t, float64(500), updated["price_from"])
	assert.Equal(t, "vases-1", updated["id"])
	assert.Equal(t, "Test", updated["name"])

	data, err := os.ReadFile(filepath.Join(s.publicDir, "data", "products.json"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "[\n  {"))

	w = s.do(t, http.MethodDelete, "/api/products/vases-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())

	w = s.do(t, http.MethodDelete, "/api/products/vases-1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "404 Not Found", w.Body.String())

	w = s.do(t, http.MethodGet, "/api/products", "")
	var remaining []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &remaining))
	require.Len(t, remaining, 1)
	assert.Equal(t, "vases-2", remaining[0]["id"])
}

func TestRouter_FreeFormFields(t *testing.T) {
	t.Run("Any JSON value is stored as sent", func(t *testing.T) {
		s := setupSite(t, "", "")

		w := s.do(t, http.MethodPost, "/api/products", `{"category":"vases","name":42,"short_description":true}`)
		require.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"id":"vases-1","category":"vases","name":42,"short_description":true,"images":[]}`, w.Body.String())

		w = s.do(t, http.MethodPost, "/api/products", `{"category":"vases","name":"","category_name":null,"short_description":""}`)
		require.Equal(t, http.StatusCreated, w.Code)
		expected := `{"id":"vases-2","category":"vases","category_name":null,"name":"","short_description":"","images":[]}`
		assert.JSONEq(t, expected, w.Body.String())

		w = s.do(t, http.MethodGet, "/api/products/vases-2", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, expected, w.Body.String())

		w = s.do(t, http.MethodPut, "/api/products/vases-2", `{"name":null}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":"vases-2","category":"vases","category_name":null,"name":null,"short_description":"","images":[]}`, w.Body.String())
	})

	t.Run("Non-string category is rejected", func(t *testing.T) {
		s := setupSite(t, "", "")

		w := s.do(t, http.MethodPost, "/api/products", `{"category":7}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Foreign records do not lock the catalogue", func(t *testing.T) {
		s := setupSite(t, "", "")
		catalog := filepath.Join(s.publicDir, "data", "products.json")
		require.NoError(t, os.MkdirAll(filepath.Dir(catalog), 0o755))
		require.NoError(t, os.WriteFile(catalog, []byte(
			`[{"id":"vases-1","category":"vases","name":"A"},{"id":"mugs-1","category":"mugs","name":7}]`), 0o644))

		w := s.do(t, http.MethodGet, "/api/products", "")
		require.Equal(t, http.StatusOK, w.Code)
		var listed []map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
		require.Len(t, listed, 2)
		assert.Equal(t, float64(7), listed[1]["name"])

		w = s.do(t, http.MethodPost, "/api/products", `{"category":"vases","name":"B"}`)
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "vases-2", decodeObject(t, w)["id"])
	})
}

func TestRouter_ImageUpload(t *testing.T) {
	s := setupSite(t, "", "")

	body := `{"category":"vases","imagesBase64":["` + onePixelPNG + `","not a data url"]}`
	w := s.do(t, http.MethodPost, "/api/products", body)
	require.Equal(t, http.StatusCreated, w.Code)

	created := decodeObject(t, w)
	images, ok := created["images"].([]interface{})
	require.True(t, ok)
	require.Len(t, images, 1)
	imagePath := images[0].(string)
	assert.Regexp(t, `^images/\d+-[0-9a-f]{8}\.png$`, imagePath)
	assert.NotContains(t, created, "imagesBase64")

	entries, err := os.ReadDir(filepath.Join(s.publicDir, "images"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	w = s.do(t, http.MethodGet, "/"+imagePath, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	w = s.do(t, http.MethodPut, "/api/products/vases-1", `{"imagesBase64":["`+onePixelPNG+`"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	updatedImages := decodeObject(t, w)["images"].([]interface{})
	require.Len(t, updatedImages, 2)
	assert.Equal(t, imagePath, updatedImages[0])
}

func TestRouter_Errors(t *testing.T) {
	s := setupSite(t, "", "")

	tests := []struct {
		name           string
		method         string
		target         string
		body           string
		expectedStatus int
		expectedBody   string
	}{
		{"Missing category", http.MethodPost, "/api/products", `{"name":"Test"}`, http.StatusBadRequest, `{"error":"category is required"}`},
		{"Malformed JSON", http.MethodPost, "/api/products", `{"category":`, http.StatusBadRequest, `{"error":"Invalid JSON"}`},
		{"Unknown product", http.MethodGet, "/api/products/vases-42", "", http.StatusNotFound, "404 Not Found"},
		{"Update unknown product", http.MethodPut, "/api/products/vases-42", `{}`, http.StatusNotFound, "404 Not Found"},
		{"Trailing slash", http.MethodGet, "/api/products/", "", http.StatusNotFound, "404 Not Found"},
		{"Nested ID", http.MethodGet, "/api/products/a/b", "", http.StatusNotFound, "404 Not Found"},
		{"Prefix lookalike", http.MethodGet, "/api/productsX", "", http.StatusNotFound, "404 Not Found"},
		{"Unsupported method", http.MethodPatch, "/api/products", "", http.StatusNotFound, "404 Not Found"},
		{"Traversal", http.MethodGet, "/../secret.txt", "", http.StatusNotFound, "404 Not Found"},
		{"Encoded traversal", http.MethodGet, "/images/..%2f..%2fsecret.txt", "", http.StatusNotFound, "404 Not Found"},
		{"Missing static file", http.MethodGet, "/nope.css", "", http.StatusNotFound, "404 Not Found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.method, tt.target, tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if strings.HasPrefix(tt.expectedBody, "{") {
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
			} else {
				assert.Equal(t, tt.expectedBody, w.Body.String())
			}
		})
	}
}

func TestRouter_CORS(t *testing.T) {
	s := setupSite(t, "secret-key", "")

	w := s.do(t, http.MethodOptions, "/api/products/vases-1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))

	w = s.do(t, http.MethodGet, "/api/products/missing", "")
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = s.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_APIKey(t *testing.T) {
	s := setupSite(t, "secret-key", "")

	w := s.do(t, http.MethodPost, "/api/products", `{"category":"vases"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/products", `{"category":"vases"}`, "X-API-Key", "secret-key")
	assert.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodGet, "/api/products", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_SiteRoutes(t *testing.T) {
	s := setupSite(t, "", "hunter2")

	w := s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "<h1>home</h1>", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = s.do(t, http.MethodGet, "/admin/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<h1>admin</h1>", w.Body.String())

	w = s.do(t, http.MethodPost, "/login", `{"username":"admin","password":"hunter2"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/login", `{"username":"admin","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	s.do(t, http.MethodPost, "/api/products", `{"category":"vases","category_name":"Vases"}`)
	w = s.do(t, http.MethodGet, "/api/categories", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"category":"vases","category_name":"Vases"}]`, w.Body.String())
}
