package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterConfig struct {
	Cart           *CartHandler
	Lists          *ListHandler
	Dashboard      *DashboardHandler
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Cart != nil {
			r.Route("/cart", func(r chi.Router) {
				r.Use(SessionMiddleware)
				r.Get("/", cfg.Cart.GetCart)
				r.Delete("/", cfg.Cart.ClearCart)
				r.Post("/items", cfg.Cart.AddItem)
				r.Put("/items/{item_id}", cfg.Cart.UpdateQuantity)
				r.Delete("/items/{item_id}", cfg.Cart.RemoveItem)
			})
		}

		if cfg.Lists != nil {
			r.Get("/menu-items", cfg.Lists.MenuItems())
			r.Get("/orders", cfg.Lists.Orders())
			r.Get("/vouchers", cfg.Lists.Vouchers())
			r.Get("/reservations", cfg.Lists.Reservations())
			r.Get("/users", cfg.Lists.Users())
			r.Get("/roles", cfg.Lists.Roles())
		}

		if cfg.Dashboard != nil {
			r.Route("/admin", func(r chi.Router) {
				r.Get("/dashboard", cfg.Dashboard.Stats)
				r.Get("/overview", cfg.Dashboard.Overview)
				r.Post("/dashboard/refresh", cfg.Dashboard.Refresh)
			})
		}
	})

	return otelhttp.NewHandler(r, "restaurant-http")
}
