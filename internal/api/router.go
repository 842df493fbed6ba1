package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RequestObserver receives one call per served request.
type RequestObserver interface {
	ObserveRequest(handler string, status int, elapsed time.Duration)
}

type RouterConfig struct {
	Timeout time.Duration
	Metrics http.Handler
	Observe RequestObserver
}

func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger, cfg.Observe))
	r.Use(middleware.Recoverer)
	if cfg.Timeout > 0 {
		r.Use(middleware.Timeout(cfg.Timeout))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Post("/items", h.AddItem)
		r.Put("/items/{index}", h.SetQuantity)
		r.Delete("/items/{index}", h.RemoveItem)
		r.Put("/skus/{sku}", h.SetSKUQuantity)
		r.Delete("/skus/{sku}", h.RemoveSKU)
		r.Post("/checkout", h.Checkout)
	})

	r.Get("/status", h.GetStatus)
	r.Post("/status/ack", h.Acknowledge)

	r.Route("/session", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/register", h.Register)
		r.Post("/logout", h.Logout)
		r.Get("/me", h.Me)
		r.Put("/me", h.UpdateMe)
	})

	r.Get("/orders/summary", h.OrderSummary)

	r.Get("/products", h.ListProducts)
	r.Get("/products/{id}", h.GetProduct)

	return r
}

func requestLogger(logger *slog.Logger, observe RequestObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			elapsed := time.Since(start)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}

			logger.Debug("http request",
				"method", r.Method,
				"route", route,
				"status", status,
				"elapsed", elapsed,
				"request_id", middleware.GetReqID(r.Context()),
			)

			if observe != nil {
				observe.ObserveRequest(route, status, elapsed)
			}
		})
	}
}
