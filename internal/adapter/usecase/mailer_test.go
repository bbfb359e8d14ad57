package usecase

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"sms-dispatch/internal/core/domain"
	"sms-dispatch/internal/core/port"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeMailings serves a single mailing by id.
type fakeMailings struct {
	mailing *domain.Mailing
	err     error
}

func (f *fakeMailings) Create(context.Context, *domain.Mailing) error { return nil }
func (f *fakeMailings) Update(context.Context, *domain.Mailing) error { return nil }
func (f *fakeMailings) Delete(context.Context, int64) error           { return nil }
func (f *fakeMailings) List(context.Context) ([]domain.Mailing, error) {
	return nil, nil
}
func (f *fakeMailings) Get(_ context.Context, id int64) (*domain.Mailing, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.mailing == nil || f.mailing.ID != id {
		return nil, nil
	}
	return f.mailing, nil
}

// fakeClients filters an in-memory client list the way the SQL
// repository does.
type fakeClients struct {
	clients []domain.Client
	err     error
}

func (f *fakeClients) Create(context.Context, *domain.Client) error { return nil }
func (f *fakeClients) Update(context.Context, *domain.Client) error { return nil }
func (f *fakeClients) Delete(context.Context, int64) error          { return nil }
func (f *fakeClients) Get(context.Context, int64) (*domain.Client, error) {
	return nil, nil
}
func (f *fakeClients) List(context.Context) ([]domain.Client, error) { return f.clients, nil }
func (f *fakeClients) FindByFilter(_ context.Context, tag *string, operatorCode *int) ([]domain.Client, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Client
	for _, c := range f.clients {
		if tag != nil && c.Tag != *tag {
			continue
		}
		if operatorCode != nil && c.OperatorCode != *operatorCode {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// memAttempts is an in-memory attempt repository enforcing the
// one-record-per-pair rule. The mailing ids stand in for the mailings
// table: Stats reports them with zero counts when no attempt exists yet.
type memAttempts struct {
	mu       sync.Mutex
	seq      int64
	mailings []int64
	byPair   map[[2]int64]*domain.DeliveryAttempt
}

func newMemAttempts(mailingIDs ...int64) *memAttempts {
	return &memAttempts{
		mailings: mailingIDs,
		byPair:   make(map[[2]int64]*domain.DeliveryAttempt),
	}
}

func (m *memAttempts) CreateOrGet(_ context.Context, mailingID, clientID int64) (*domain.DeliveryAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]int64{mailingID, clientID}
	if a, ok := m.byPair[key]; ok {
		cp := *a
		return &cp, nil
	}
	m.seq++
	a := &domain.DeliveryAttempt{
		ID:        m.seq,
		MailingID: mailingID,
		ClientID:  clientID,
		Status:    domain.StatusPending,
		CreatedAt: time.Now(),
	}
	m.byPair[key] = a
	cp := *a
	return &cp, nil
}

func (m *memAttempts) Update(_ context.Context, a *domain.DeliveryAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := m.byPair[[2]int64{a.MailingID, a.ClientID}]
	stored.Status = a.Status
	stored.SendDate = a.SendDate
	stored.UpdatedAt = time.Now()
	return nil
}

func (m *memAttempts) ListByMailing(_ context.Context, mailingID int64) ([]domain.DeliveryAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.DeliveryAttempt
	for _, a := range m.byPair {
		if a.MailingID == mailingID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memAttempts) Stats(context.Context) ([]port.MailingStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byMailing := make(map[int64]*port.MailingStats)
	for _, id := range m.mailings {
		byMailing[id] = &port.MailingStats{MailingID: id}
	}
	for _, a := range m.byPair {
		s, ok := byMailing[a.MailingID]
		if !ok {
			s = &port.MailingStats{MailingID: a.MailingID}
			byMailing[a.MailingID] = s
		}
		s.Total++
		if a.Status == domain.StatusDelivered {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}
	out := make([]port.MailingStats, 0, len(byMailing))
	for _, s := range byMailing {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MailingID < out[j].MailingID })
	return out, nil
}

func (m *memAttempts) DeliveredBetween(_ context.Context, from, to time.Time) (map[int64]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[int64]int)
	for _, a := range m.byPair {
		if a.Status == domain.StatusDelivered && a.SendDate != nil &&
			!a.SendDate.Before(from) && !a.SendDate.After(to) {
			counts[a.MailingID]++
		}
	}
	return counts, nil
}

// fakeTransport answers every send with a fixed status (or error) and
// counts calls.
type fakeTransport struct {
	mu     sync.Mutex
	calls  int
	status int
	err    error
}

func (f *fakeTransport) Send(context.Context, int64, int64, string) (int, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.status, f.err
}

func (f *fakeTransport) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
