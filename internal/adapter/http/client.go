package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"sms-dispatch/internal/core/domain"
)

type clientPayload struct {
	Phone        *string `json:"phone"`
	OperatorCode *int    `json:"operator_code"`
	Tag          *string `json:"tag"`
	Timezone     *string `json:"timezone"`
}

func (p *clientPayload) apply(c *domain.Client) {
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.OperatorCode != nil {
		c.OperatorCode = *p.OperatorCode
	}
	if p.Tag != nil {
		c.Tag = *p.Tag
	}
	if p.Timezone != nil {
		c.Timezone = *p.Timezone
	}
}

type clientResponse struct {
	ID           int64     `json:"id"`
	Phone        string    `json:"phone"`
	OperatorCode int       `json:"operator_code"`
	Tag          string    `json:"tag"`
	Timezone     string    `json:"timezone"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toClientResponse(c *domain.Client) clientResponse {
	return clientResponse{
		ID:           c.ID,
		Phone:        c.Phone,
		OperatorCode: c.OperatorCode,
		Tag:          c.Tag,
		Timezone:     c.Timezone,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func (h *Handler) handleClientCreate(w http.ResponseWriter, r *http.Request) {
	var p clientPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	var c domain.Client
	p.apply(&c)
	if err := c.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.clients.Create(r.Context(), &c); err != nil {
		h.logger.Error("create client", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.logger.Info("client created", slog.Int64("client_id", c.ID))
	h.writeJSON(w, http.StatusCreated, toClientResponse(&c))
}

func (h *Handler) handleClientUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	c, err := h.clients.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("load client", slog.Int64("client_id", id), slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if c == nil {
		http.NotFound(w, r)
		return
	}
	var p clientPayload
	if err = json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	p.apply(c)
	if err = c.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err = h.clients.Update(r.Context(), c); err != nil {
		h.logger.Error("update client", slog.Int64("client_id", id), slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.logger.Info("client updated", slog.Int64("client_id", c.ID))
	h.writeJSON(w, http.StatusOK, toClientResponse(c))
}

func (h *Handler) handleClientGet(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	c, err := h.clients.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("load client", slog.Int64("client_id", id), slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if c == nil {
		http.NotFound(w, r)
		return
	}
	h.writeJSON(w, http.StatusOK, toClientResponse(c))
}

func (h *Handler) handleClientList(w http.ResponseWriter, r *http.Request) {
	list, err := h.clients.List(r.Context())
	if err != nil {
		h.logger.Error("list clients", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	out := make([]clientResponse, len(list))
	for i := range list {
		out[i] = toClientResponse(&list[i])
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleClientDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	if err := h.clients.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete client", slog.Int64("client_id", id), slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.logger.Info("client deleted", slog.Int64("client_id", id))
	w.WriteHeader(http.StatusNoContent)
}
