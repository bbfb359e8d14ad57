package httpadapter

import (
	"log/slog"
	"net/http"
	"time"
)

// handleStatsOverview returns attempted/succeeded/failed counts for every
// mailing with at least one delivery attempt.
func (h *Handler) handleStatsOverview(w http.ResponseWriter, r *http.Request) {
	stats, err := h.mailer.MailingStats(r.Context())
	if err != nil {
		h.logger.Error("stats error", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

type attemptResponse struct {
	ID        int64      `json:"id"`
	MailingID int64      `json:"mailing_id"`
	ClientID  int64      `json:"client_id"`
	Status    int        `json:"status"`
	SendDate  *time.Time `json:"send_date,omitempty"`
}

// handleStatsDetail returns every delivery attempt of one mailing.
func (h *Handler) handleStatsDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	attempts, err := h.mailer.MailingDetail(r.Context(), id)
	if err != nil {
		h.logger.Error("stats detail error", slog.Int64("mailing_id", id), slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	out := make([]attemptResponse, len(attempts))
	for i, a := range attempts {
		out[i] = attemptResponse{
			ID:        a.ID,
			MailingID: a.MailingID,
			ClientID:  a.ClientID,
			Status:    a.Status,
			SendDate:  a.SendDate,
		}
	}
	h.writeJSON(w, http.StatusOK, out)
}
