package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sms-dispatch/internal/core/port"
)

// Handler is the inbound HTTP adapter: mailing and client CRUD plus the
// statistics endpoints. Mailing writes also publish a dispatch job so the
// worker starts the mailing at its start date.
type Handler struct {
	mailings port.MailingRepository
	clients  port.ClientRepository
	mailer   port.Mailer
	queue    port.DispatchQueue
	logger   *slog.Logger
	router   chi.Router
}

// NewHandler creates a handler with all routes configured.
func NewHandler(
	mailings port.MailingRepository,
	clients port.ClientRepository,
	mailer port.Mailer,
	queue port.DispatchQueue,
	logger *slog.Logger,
) *Handler {
	h := &Handler{
		mailings: mailings,
		clients:  clients,
		mailer:   mailer,
		queue:    queue,
		logger:   logger,
	}
	r := chi.NewRouter()
	r.Use(h.requestID)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/mailings", func(r chi.Router) {
			r.Get("/", h.handleMailingList)
			r.Post("/", h.handleMailingCreate)
			r.Get("/statistics", h.handleStatsOverview)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.handleMailingGet)
				r.Patch("/", h.handleMailingUpdate)
				r.Delete("/", h.handleMailingDelete)
				r.Get("/statistics", h.handleStatsDetail)
			})
		})
		r.Route("/clients", func(r chi.Router) {
			r.Get("/", h.handleClientList)
			r.Post("/", h.handleClientCreate)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.handleClientGet)
				r.Patch("/", h.handleClientUpdate)
				r.Delete("/", h.handleClientDelete)
			})
		})
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response error", slog.Any("error", err))
	}
}
