package router

import (
	"net/http"
	"strings"

	"catalog-cms/internal/handler"
	"catalog-cms/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates the HTTP handler for the whole site: the product API, the
// admin login, the health check and the static file tree.
//
// Requests are classified on the raw request path rather than through
// http.ServeMux, which would clean the path and redirect "../" requests
// instead of letting the static handler reject them with a 404.
func New(
	productHandler *handler.ProductHandler,
	authHandler *handler.AuthHandler,
	staticHandler http.Handler,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	// Product routes: /api/products and /api/products/{id}
	productRoutes := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == handler.ProductsPath {
			switch r.Method {
			case http.MethodGet:
				productHandler.List(w, r)
			case http.MethodPost:
				productHandler.Create(w, r)
			default:
				handler.WriteNotFound(w)
			}
			return
		}

		if _, ok := handler.ProductID(r.URL.Path); !ok {
			handler.WriteNotFound(w)
			return
		}

		switch r.Method {
		case http.MethodGet:
			productHandler.Get(w, r)
		case http.MethodPut:
			productHandler.Update(w, r)
		case http.MethodDelete:
			productHandler.Delete(w, r)
		default:
			handler.WriteNotFound(w)
		}
	})

	// CORS answers preflight before the API key check runs
	productAPI := middleware.CORS(middleware.APIKeyAuth(apiKey, logger)(productRoutes))
	categoriesAPI := middleware.CORS(http.HandlerFunc(productHandler.Categories))

	health := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	dispatch := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case strings.HasPrefix(path, handler.ProductsPath):
			productAPI.ServeHTTP(w, r)
		case path == "/api/categories":
			categoriesAPI.ServeHTTP(w, r)
		case path == "/health":
			health.ServeHTTP(w, r)
		case path == "/login":
			authHandler.Login(w, r)
		default:
			staticHandler.ServeHTTP(w, r)
		}
	})

	// Apply middleware in order: Recovery -> RequestID -> Logging
	var h http.Handler = dispatch
	h = middleware.Logging(logger)(h)
	h = middleware.RequestID(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
