package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/orlovm/bidmarket/internal/models"
	apperrors "github.com/orlovm/bidmarket/pkg/errors"
)

func newInboxService(t *testing.T, f *marketplaceFixture) *InboxService {
	t.Helper()

	requests := newRequestService(t, f)
	svc, err := NewInboxService(f.db, requests)
	require.NoError(t, err)
	return svc
}

func seedAlert(t *testing.T, f *marketplaceFixture, requestID, providerID, serviceID string, read bool) {
	t.Helper()
	require.NoError(t, f.db.Create(&models.Alert{
		RequestID:  requestID,
		ProviderID: providerID,
		ServiceID:  serviceID,
		IsRead:     read,
	}).Error)
}

func TestInboxClientRequestsForProvider(t *testing.T) {
	f := seedMarketplace(t)
	svc := newInboxService(t, f)

	older := f.newTransportRequest(t, "req-older")
	newer := f.newTransportRequest(t, "req-newer")
	require.NoError(t, f.db.Model(&older).
		UpdateColumn("created_at", time.Now().Add(-2*time.Hour)).Error)

	// Older request: both alerts read. Newer request: one of two unread,
	// which keeps the whole entry unread.
	seedAlert(t, f, older.ID, f.ProviderA, f.ServiceA1, true)
	seedAlert(t, f, older.ID, f.ProviderA, f.ServiceA2, true)
	seedAlert(t, f, newer.ID, f.ProviderA, f.ServiceA1, true)
	seedAlert(t, f, newer.ID, f.ProviderA, f.ServiceA2, false)

	// Noise from another provider must never show up.
	seedAlert(t, f, newer.ID, f.ProviderB, f.ServiceB1, false)

	items, err := svc.ClientRequestsForProvider(context.Background(), providerSession("client-a", f.ProviderA))
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.Equal(t, newer.ID, items[0].Request.ID, "unread entries come first")
	require.False(t, items[0].IsRead)
	require.Equal(t, 2, items[0].AlertCount)

	require.Equal(t, older.ID, items[1].Request.ID)
	require.True(t, items[1].IsRead)
	require.Equal(t, 2, items[1].AlertCount)
}

func TestInboxSkipsBrokenEntries(t *testing.T) {
	f := seedMarketplace(t)
	svc := newInboxService(t, f)

	request := f.newTransportRequest(t, "req-1")
	seedAlert(t, f, request.ID, f.ProviderA, f.ServiceA1, false)

	// An alert whose request vanished: logged and skipped, the rest of
	// the inbox still renders. The foreign key is per connection in
	// sqlite, switch it off to plant the orphan.
	require.NoError(t, f.db.Exec("PRAGMA foreign_keys = OFF").Error)
	seedAlert(t, f, "req-gone", f.ProviderA, f.ServiceA2, false)
	require.NoError(t, f.db.Exec("PRAGMA foreign_keys = ON").Error)

	items, err := svc.ClientRequestsForProvider(context.Background(), providerSession("client-a", f.ProviderA))
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, request.ID, items[0].Request.ID)
}

func TestInboxEmpty(t *testing.T) {
	f := seedMarketplace(t)
	svc := newInboxService(t, f)

	items, err := svc.ClientRequestsForProvider(context.Background(), providerSession("client-a", f.ProviderA))
	require.NoError(t, err)
	require.Empty(t, items)

	_, err = svc.ClientRequestsForProvider(context.Background(), clientSession(f.BuyerID))
	require.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestInboxMarkAlertsAsRead(t *testing.T) {
	f := seedMarketplace(t)
	svc := newInboxService(t, f)

	request := f.newTransportRequest(t, "req-1")
	seedAlert(t, f, request.ID, f.ProviderA, f.ServiceA1, false)
	seedAlert(t, f, request.ID, f.ProviderA, f.ServiceA2, false)
	seedAlert(t, f, request.ID, f.ProviderB, f.ServiceB1, false)

	session := providerSession("client-a", f.ProviderA)
	require.NoError(t, svc.MarkAlertsAsRead(context.Background(), session, f.ProviderA, request.ID))

	var unread int64
	require.NoError(t, f.db.Model(&models.Alert{}).
		Where("provider_id = ? AND is_read = ?", f.ProviderA, false).
		Count(&unread).Error)
	require.Zero(t, unread)

	// Provider B's alert is untouched.
	var other models.Alert
	require.NoError(t, f.db.First(&other, "provider_id = ?", f.ProviderB).Error)
	require.False(t, other.IsRead)
}

func TestInboxMarkAlertsCrossProviderNoOp(t *testing.T) {
	f := seedMarketplace(t)
	svc := newInboxService(t, f)

	request := f.newTransportRequest(t, "req-1")
	seedAlert(t, f, request.ID, f.ProviderB, f.ServiceB1, false)

	// Provider A targeting provider B's alerts: no error, no effect.
	session := providerSession("client-a", f.ProviderA)
	require.NoError(t, svc.MarkAlertsAsRead(context.Background(), session, f.ProviderB, request.ID))

	var alert models.Alert
	require.NoError(t, f.db.First(&alert, "provider_id = ?", f.ProviderB).Error)
	require.False(t, alert.IsRead)
}

func TestInboxUnreadCount(t *testing.T) {
	f := seedMarketplace(t)
	svc := newInboxService(t, f)

	first := f.newTransportRequest(t, "req-1")
	second := f.newTransportRequest(t, "req-2")

	seedAlert(t, f, first.ID, f.ProviderA, f.ServiceA1, true)
	seedAlert(t, f, first.ID, f.ProviderA, f.ServiceA2, false)
	seedAlert(t, f, second.ID, f.ProviderA, f.ServiceA1, true)

	count, err := svc.UnreadCount(context.Background(), providerSession("client-a", f.ProviderA))
	require.NoError(t, err)
	require.Equal(t, 1, count, "one request still holds an unread alert")
}

func TestInboxServicesForRequest(t *testing.T) {
	f := seedMarketplace(t)
	svc := newInboxService(t, f)

	request := f.newTransportRequest(t, "req-1")
	seedAlert(t, f, request.ID, f.ProviderA, f.ServiceA1, false)
	seedAlert(t, f, request.ID, f.ProviderA, f.ServiceA2, false)

	price := 85.0
	require.NoError(t, f.db.Create(&models.Proposal{
		RequestID:  request.ID,
		ProviderID: f.ProviderA,
		ServiceID:  f.ServiceA2,
		Price:      &price,
		Status:     models.ProposalSubmitted,
	}).Error)

	items, err := svc.ServicesForRequest(context.Background(), providerSession("client-a", f.ProviderA), request.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	byID := make(map[string]ServiceForRequest, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	require.False(t, byID[f.ServiceA1].AlreadyProposed)
	require.True(t, byID[f.ServiceA2].AlreadyProposed)
}
