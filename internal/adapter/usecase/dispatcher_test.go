package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sms-dispatch/internal/core/domain"
	"sms-dispatch/internal/core/port"
)

func testMailing(d time.Duration) *domain.Mailing {
	return &domain.Mailing{
		ID:        1,
		Text:      "hello",
		StartDate: time.Now().Add(-time.Minute),
		EndDate:   time.Now().Add(d),
		FilterTag: strPtr("vip"),
	}
}

func testClients() []domain.Client {
	return []domain.Client{
		{ID: 10, Phone: "79001234567", OperatorCode: 900, Tag: "vip", Timezone: "UTC"},
		{ID: 11, Phone: "79017654321", OperatorCode: 901, Tag: "vip", Timezone: "UTC"},
		{ID: 12, Phone: "79029990000", OperatorCode: 902, Tag: "promo", Timezone: "UTC"},
	}
}

func newTestMailer(m *domain.Mailing, clients *fakeClients, attempts *memAttempts, tr port.Transport) *MailerUseCase {
	return NewMailerUseCase(&fakeMailings{mailing: m}, clients, attempts, tr, testLogger(), 20*time.Millisecond)
}

func TestDispatchAllDelivered(t *testing.T) {
	m := testMailing(time.Minute)
	attempts := newMemAttempts()
	tr := &fakeTransport{status: 200}
	u := newTestMailer(m, &fakeClients{clients: testClients()}, attempts, tr)

	outcome, err := u.Dispatch(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BatchAllDelivered, outcome)

	// Only the two vip clients receive a loop.
	list, err := attempts.ListByMailing(context.Background(), m.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, a := range list {
		assert.Equal(t, domain.StatusDelivered, a.Status)
		require.NotNil(t, a.SendDate)
	}

	stats, err := u.MailingStats(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, stats[0].Total, stats[0].Succeeded)
	assert.Zero(t, stats[0].Failed)
}

func TestDispatchBothFilters(t *testing.T) {
	m := testMailing(time.Minute)
	m.FilterOperatorCode = intPtr(900)
	attempts := newMemAttempts()
	u := newTestMailer(m, &fakeClients{clients: testClients()}, attempts, &fakeTransport{status: 200})

	_, err := u.Dispatch(context.Background(), m.ID)
	require.NoError(t, err)

	list, err := attempts.ListByMailing(context.Background(), m.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(10), list[0].ClientID)
}

func TestDispatchRetriesUntilExpiry(t *testing.T) {
	m := testMailing(150 * time.Millisecond)
	attempts := newMemAttempts()
	tr := &fakeTransport{status: 503}
	u := newTestMailer(m, &fakeClients{clients: testClients()}, attempts, tr)

	outcome, err := u.Dispatch(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BatchPartial, outcome)
	assert.GreaterOrEqual(t, tr.callCount(), 2, "each loop should retry at least once")

	list, err := attempts.ListByMailing(context.Background(), m.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, a := range list {
		assert.Equal(t, 503, a.Status, "last failure code stays on the record")
		assert.Nil(t, a.SendDate)
	}

	stats, err := u.MailingStats(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Zero(t, stats[0].Succeeded)
	assert.Equal(t, stats[0].Total, stats[0].Failed)
}

func TestDispatchExpiredMailingLaunchesNothing(t *testing.T) {
	m := testMailing(time.Minute)
	m.EndDate = time.Now().Add(-time.Second)
	attempts := newMemAttempts()
	tr := &fakeTransport{status: 200}
	u := newTestMailer(m, &fakeClients{clients: testClients()}, attempts, tr)

	_, err := u.Dispatch(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Zero(t, tr.callCount())

	list, err := attempts.ListByMailing(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDispatchClientResolutionFailureAborts(t *testing.T) {
	m := testMailing(time.Minute)
	u := newTestMailer(m, &fakeClients{err: errors.New("db gone")}, newMemAttempts(), &fakeTransport{status: 200})

	_, err := u.Dispatch(context.Background(), m.ID)
	require.Error(t, err)
}

func TestDispatchUnknownMailing(t *testing.T) {
	u := newTestMailer(testMailing(time.Minute), &fakeClients{}, newMemAttempts(), &fakeTransport{status: 200})

	_, err := u.Dispatch(context.Background(), 42)
	require.Error(t, err)
}

func TestDeliverBadTimezoneErrorsOneLoopOnly(t *testing.T) {
	m := testMailing(time.Minute)
	clients := testClients()
	clients[0].Timezone = "Atlantis/Nowhere"
	attempts := newMemAttempts()
	u := newTestMailer(m, &fakeClients{clients: clients}, attempts, &fakeTransport{status: 200})

	outcome, err := u.Dispatch(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BatchPartial, outcome)

	list, err := attempts.ListByMailing(context.Background(), m.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	byClient := make(map[int64]domain.DeliveryAttempt, len(list))
	for _, a := range list {
		byClient[a.ClientID] = a
	}
	// The bad-timezone loop stalls in pending; its sibling still delivers.
	assert.Equal(t, domain.StatusPending, byClient[10].Status)
	assert.Equal(t, domain.StatusDelivered, byClient[11].Status)
}

func TestStatsIncludeMailingsWithoutAttempts(t *testing.T) {
	m := testMailing(time.Minute)
	attempts := newMemAttempts(m.ID, 2)
	u := newTestMailer(m, &fakeClients{clients: testClients()}, attempts, &fakeTransport{status: 200})

	_, err := u.Dispatch(context.Background(), m.ID)
	require.NoError(t, err)

	// Mailing 2 never dispatched; the overview still reports it.
	stats, err := u.MailingStats(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, int64(2), stats[0].Succeeded)
	assert.Equal(t, port.MailingStats{MailingID: 2}, stats[1])
}

func TestDispatchReusesAttemptRecord(t *testing.T) {
	m := testMailing(time.Minute)
	attempts := newMemAttempts()
	u := newTestMailer(m, &fakeClients{clients: testClients()}, attempts, &fakeTransport{status: 200})

	_, err := u.Dispatch(context.Background(), m.ID)
	require.NoError(t, err)
	_, err = u.Dispatch(context.Background(), m.ID)
	require.NoError(t, err)

	// A re-run adopts the existing records instead of duplicating them.
	list, err := attempts.ListByMailing(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
