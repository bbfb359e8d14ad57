package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"sms-dispatch/internal/core/domain"
	"sms-dispatch/internal/core/port"
)

// nullable distinguishes an absent JSON field from an explicit null.
// Absent leaves the target untouched; null clears it.
type nullable[T any] struct {
	set   bool
	value *T
}

func (n *nullable[T]) UnmarshalJSON(b []byte) error {
	n.set = true
	if string(b) == "null" {
		n.value = nil
		return nil
	}
	return json.Unmarshal(b, &n.value)
}

// mailingPayload carries mailing fields for create and partial update.
// Required fields use plain pointers; the nullable mailing fields use the
// tri-state wrapper so a PATCH can clear them.
type mailingPayload struct {
	Text               *string                    `json:"text"`
	StartDate          *time.Time                 `json:"start_date"`
	EndDate            *time.Time                 `json:"end_date"`
	StartTime          nullable[domain.TimeOfDay] `json:"start_time"`
	EndTime            nullable[domain.TimeOfDay] `json:"end_time"`
	FilterTag          nullable[string]           `json:"filter_tag"`
	FilterOperatorCode nullable[int]              `json:"filter_operator_code"`
}

func (p *mailingPayload) apply(m *domain.Mailing) {
	if p.Text != nil {
		m.Text = *p.Text
	}
	if p.StartDate != nil {
		m.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		m.EndDate = *p.EndDate
	}
	if p.StartTime.set {
		m.StartTime = p.StartTime.value
	}
	if p.EndTime.set {
		m.EndTime = p.EndTime.value
	}
	if p.FilterTag.set {
		m.FilterTag = p.FilterTag.value
	}
	if p.FilterOperatorCode.set {
		m.FilterOperatorCode = p.FilterOperatorCode.value
	}
}

type mailingResponse struct {
	ID                 int64             `json:"id"`
	Text               string            `json:"text"`
	StartDate          time.Time         `json:"start_date"`
	EndDate            time.Time         `json:"end_date"`
	StartTime          *domain.TimeOfDay `json:"start_time,omitempty"`
	EndTime            *domain.TimeOfDay `json:"end_time,omitempty"`
	FilterTag          *string           `json:"filter_tag,omitempty"`
	FilterOperatorCode *int              `json:"filter_operator_code,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

func toMailingResponse(m *domain.Mailing) mailingResponse {
	return mailingResponse{
		ID:                 m.ID,
		Text:               m.Text,
		StartDate:          m.StartDate,
		EndDate:            m.EndDate,
		StartTime:          m.StartTime,
		EndTime:            m.EndTime,
		FilterTag:          m.FilterTag,
		FilterOperatorCode: m.FilterOperatorCode,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *Handler) handleMailingCreate(w http.ResponseWriter, r *http.Request) {
	var p mailingPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	var m domain.Mailing
	p.apply(&m)
	if err := m.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.mailings.Create(r.Context(), &m); err != nil {
		h.logger.Error("create mailing", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.logger.Info("mailing created", slog.Int64("mailing_id", m.ID))
	h.publishDispatch(r, &m)
	h.writeJSON(w, http.StatusCreated, toMailingResponse(&m))
}

func (h *Handler) handleMailingUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	m, err := h.mailings.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("load mailing", slog.Int64("mailing_id", id), slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if m == nil {
		http.NotFound(w, r)
		return
	}
	var p mailingPayload
	if err = json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	p.apply(m)
	if err = m.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err = h.mailings.Update(r.Context(), m); err != nil {
		h.logger.Error("update mailing", slog.Int64("mailing_id", id), slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.logger.Info("mailing updated", slog.Int64("mailing_id", m.ID))
	h.publishDispatch(r, m)
	h.writeJSON(w, http.StatusOK, toMailingResponse(m))
}

// publishDispatch schedules the mailing for dispatch at its start date.
// A publish failure does not fail the CRUD call; the mailing can be
// re-dispatched by updating it.
func (h *Handler) publishDispatch(r *http.Request, m *domain.Mailing) {
	job := port.DispatchJob{MailingID: m.ID, StartAt: m.StartDate}
	if err := h.queue.Publish(r.Context(), job); err != nil {
		h.logger.Error("publish dispatch job",
			slog.Int64("mailing_id", m.ID), slog.Any("error", err))
	}
}

func (h *Handler) handleMailingGet(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	m, err := h.mailings.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("load mailing", slog.Int64("mailing_id", id), slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if m == nil {
		http.NotFound(w, r)
		return
	}
	h.writeJSON(w, http.StatusOK, toMailingResponse(m))
}

func (h *Handler) handleMailingList(w http.ResponseWriter, r *http.Request) {
	list, err := h.mailings.List(r.Context())
	if err != nil {
		h.logger.Error("list mailings", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	out := make([]mailingResponse, len(list))
	for i := range list {
		out[i] = toMailingResponse(&list[i])
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleMailingDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	if err := h.mailings.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete mailing", slog.Int64("mailing_id", id), slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.logger.Info("mailing deleted", slog.Int64("mailing_id", id))
	w.WriteHeader(http.StatusNoContent)
}
