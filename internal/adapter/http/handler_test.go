package httpadapter

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sms-dispatch/internal/core/domain"
	"sms-dispatch/internal/core/port"
)

type stubMailings struct {
	created []domain.Mailing
}

func (s *stubMailings) Create(_ context.Context, m *domain.Mailing) error {
	m.ID = int64(len(s.created) + 1)
	s.created = append(s.created, *m)
	return nil
}
func (s *stubMailings) Update(_ context.Context, m *domain.Mailing) error {
	for i := range s.created {
		if s.created[i].ID == m.ID {
			s.created[i] = *m
		}
	}
	return nil
}
func (s *stubMailings) Delete(context.Context, int64) error { return nil }
func (s *stubMailings) Get(_ context.Context, id int64) (*domain.Mailing, error) {
	for i := range s.created {
		if s.created[i].ID == id {
			cp := s.created[i]
			return &cp, nil
		}
	}
	return nil, nil
}
func (s *stubMailings) List(context.Context) ([]domain.Mailing, error) { return s.created, nil }

type stubClients struct{}

func (stubClients) Create(_ context.Context, c *domain.Client) error {
	c.ID = 1
	return nil
}
func (stubClients) Update(context.Context, *domain.Client) error           { return nil }
func (stubClients) Delete(context.Context, int64) error                    { return nil }
func (stubClients) Get(context.Context, int64) (*domain.Client, error)     { return nil, nil }
func (stubClients) List(context.Context) ([]domain.Client, error)          { return nil, nil }
func (stubClients) FindByFilter(context.Context, *string, *int) ([]domain.Client, error) {
	return nil, nil
}

type stubMailer struct {
	stats []port.MailingStats
}

func (s *stubMailer) Dispatch(context.Context, int64) (domain.BatchOutcome, error) {
	return domain.BatchAllDelivered, nil
}
func (s *stubMailer) MailingStats(context.Context) ([]port.MailingStats, error) {
	return s.stats, nil
}
func (s *stubMailer) MailingDetail(context.Context, int64) ([]domain.DeliveryAttempt, error) {
	return nil, nil
}

type stubQueue struct {
	jobs []port.DispatchJob
}

func (s *stubQueue) Publish(_ context.Context, job port.DispatchJob) error {
	s.jobs = append(s.jobs, job)
	return nil
}
func (s *stubQueue) Consume(context.Context, func(context.Context, port.DispatchJob) error) error {
	return nil
}
func (s *stubQueue) Close() error { return nil }

func newTestHandler() (*Handler, *stubMailings, *stubQueue) {
	mailings := &stubMailings{}
	q := &stubQueue{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(mailings, stubClients{}, &stubMailer{stats: []port.MailingStats{
		{MailingID: 1, Total: 3, Succeeded: 2, Failed: 1},
	}}, q, logger)
	return h, mailings, q
}

func TestMailingCreatePublishesDispatchJob(t *testing.T) {
	h, mailings, q := newTestHandler()

	start := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	end := time.Now().Add(2 * time.Hour).UTC().Format(time.RFC3339)
	body := `{"text":"hi","start_date":"` + start + `","end_date":"` + end +
		`","start_time":"09:00","end_time":"18:00","filter_tag":"vip"}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/mailings/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, mailings.created, 1)
	require.Len(t, q.jobs, 1)
	assert.Equal(t, mailings.created[0].ID, q.jobs[0].MailingID)
	assert.Equal(t, mailings.created[0].StartDate, q.jobs[0].StartAt)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "09:00", resp["start_time"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestMailingCreateRejectsInvalidPayload(t *testing.T) {
	h, mailings, q := newTestHandler()

	cases := map[string]string{
		"no filter":       `{"text":"hi","start_date":"2030-01-01T00:00:00Z","end_date":"2030-01-02T00:00:00Z"}`,
		"inverted dates":  `{"text":"hi","start_date":"2030-01-02T00:00:00Z","end_date":"2030-01-01T00:00:00Z","filter_tag":"vip"}`,
		"half window":     `{"text":"hi","start_date":"2030-01-01T00:00:00Z","end_date":"2030-01-02T00:00:00Z","filter_tag":"vip","start_time":"09:00"}`,
		"malformed json":  `{`,
		"bad time of day": `{"text":"hi","start_date":"2030-01-01T00:00:00Z","end_date":"2030-01-02T00:00:00Z","filter_tag":"vip","start_time":"25:00","end_time":"26:00"}`,
	}
	for name, body := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/mailings/", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.Router().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
	assert.Empty(t, mailings.created)
	assert.Empty(t, q.jobs)
}

func TestMailingPatchClearsNullableFields(t *testing.T) {
	h, mailings, _ := newTestHandler()

	body := `{"text":"hi","start_date":"2030-01-01T00:00:00Z","end_date":"2030-01-02T00:00:00Z",` +
		`"start_time":"09:00","end_time":"18:00","filter_tag":"vip","filter_operator_code":901}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/mailings/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Explicit nulls clear the daily window and one filter.
	patch := `{"start_time":null,"end_time":null,"filter_operator_code":null}`
	req = httptest.NewRequest(http.MethodPatch, "/api/v1/mailings/1", strings.NewReader(patch))
	rec = httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	m := mailings.created[0]
	assert.Nil(t, m.StartTime)
	assert.Nil(t, m.EndTime)
	assert.Nil(t, m.FilterOperatorCode)
	require.NotNil(t, m.FilterTag, "absent fields stay untouched")
	assert.Equal(t, "vip", *m.FilterTag)

	// Clearing the last filter violates validation and persists nothing.
	req = httptest.NewRequest(http.MethodPatch, "/api/v1/mailings/1", strings.NewReader(`{"filter_tag":null}`))
	rec = httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, mailings.created[0].FilterTag)
}

func TestClientCreateRejectsBadPhone(t *testing.T) {
	h, _, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/clients/",
		strings.NewReader(`{"phone":"89261234567","operator_code":926,"tag":"vip","timezone":"UTC"}`))
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatsOverview(t *testing.T) {
	h, _, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/mailings/statistics", nil)
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var stats []port.MailingStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Len(t, stats, 1)
	assert.Equal(t, int64(2), stats[0].Succeeded)
}

func TestMailingGetNotFound(t *testing.T) {
	h, _, _ := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/mailings/99", nil)
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
