package internal

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/bepass-tunl/tunnelcore/internal/config"
	"github.com/bepass-tunl/tunnelcore/internal/link"
)

// linkResponse is the body of the GET /link contract from spec §6.
type linkResponse struct {
	Links []string `json:"links"`
}

// NewRouter builds the single inbound HTTP handler spec §6 describes: a
// GET /link JSON route, and every other path looked up against the
// config's inbound list and, on a match, upgraded to a WebSocket and
// handed to a Tunnel. Grounded on the go-chi/chi mux plus go-chi/cors and
// go-chi/render combination teacher's go.mod already carries for this
// purpose.
func NewRouter(cfg *config.Config, tunnel *Tunnel, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}))

	r.Get("/link", func(w http.ResponseWriter, r *http.Request) {
		links := link.Generate(cfg, r.Host)
		render.Status(r, http.StatusOK)
		render.JSON(w, r, linkResponse{Links: links})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		in := cfg.FindInbound(r.URL.Path)
		if in == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		ws, err := AcceptWebSocket(w, r)
		if err != nil {
			logger.Debug("handler: websocket upgrade failed", zap.String("path", r.URL.Path), zap.Error(err))
			return
		}

		if err := tunnel.Handle(r.Context(), ws, in, r.URL.Query()); err != nil {
			logger.Debug("handler: tunnel ended", zap.String("path", r.URL.Path), zap.Error(err))
		}
	})

	return r
}
