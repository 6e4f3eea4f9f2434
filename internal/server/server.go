package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/grocerycalc/internal/handler"
	"github.com/dukerupert/grocerycalc/internal/middleware"
	"github.com/dukerupert/grocerycalc/internal/money"
	"github.com/dukerupert/grocerycalc/internal/shopping"
	ws "github.com/dukerupert/grocerycalc/internal/websocket"
)

// Sensitive routes (scan hits a public API, import takes a passphrase) are
// limited per client.
const (
	sensitiveLimit  = 20
	sensitivePeriod = time.Minute
)

// Deps are the long-lived pieces the server routes to.
type Deps struct {
	Engine      *shopping.Engine
	Persistence handler.Persistence
	Lookup      shopping.ProductLookup
	Hub         *ws.Hub
	Format      *money.Formatter
	Logger      *slog.Logger
}

type Server struct {
	engine      *shopping.Engine
	hub         *ws.Hub
	shoppingH   *handler.ShoppingHandler
	dataH       *handler.DataHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(d Deps) *Server {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	hub := d.Hub
	if hub == nil {
		hub = ws.NewHub(logger.With("component", "websocket"))
	}
	return &Server{
		engine:      d.Engine,
		hub:         hub,
		shoppingH:   handler.NewShoppingHandler(d.Format, logger.With("component", "shopping")),
		dataH:       handler.NewDataHandler(d.Lookup, d.Persistence, logger.With("component", "data")),
		rateLimiter: middleware.NewRateLimiter(sensitiveLimit, sensitivePeriod),
		logger:      logger,
	}
}

// RunMaintenance prunes rate limiter state until ctx is done.
func (s *Server) RunMaintenance(ctx context.Context) {
	s.rateLimiter.Run(ctx)
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))

	mux.HandleFunc("GET /api/state", s.shoppingH.GetState)
	mux.HandleFunc("POST /api/items", s.shoppingH.CreateItem)
	mux.HandleFunc("PUT /api/items/{id}", s.shoppingH.UpdateItem)
	mux.HandleFunc("DELETE /api/items/{id}", s.shoppingH.DeleteItem)
	mux.HandleFunc("DELETE /api/items", s.shoppingH.ClearItems)

	mux.HandleFunc("POST /api/trips", s.shoppingH.SaveTrip)
	mux.HandleFunc("GET /api/trips", s.shoppingH.ListTrips)
	mux.HandleFunc("GET /api/trips/{id}", s.shoppingH.GetTrip)

	mux.HandleFunc("POST /api/ui/{action}", s.shoppingH.UIAction)
	mux.Handle("POST /api/scan", s.limited(s.dataH.Scan))

	mux.HandleFunc("POST /api/export", s.dataH.Export)
	mux.Handle("POST /api/import", s.limited(s.dataH.Import))
	mux.HandleFunc("DELETE /api/data", s.dataH.DeleteAll)

	var h http.Handler = mux
	h = middleware.WithEngine(s.engine)(h)
	return middleware.RequestLogger(s.logger.With("component", "http"))(h)
}

func (s *Server) limited(h http.HandlerFunc) http.Handler {
	return middleware.RateLimit(s.rateLimiter)(h)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if s.engine == nil || !s.engine.Initialized() {
		status = "loading"
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}
