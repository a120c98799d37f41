package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orlovm/bidmarket/internal/models"
)

func TestMatchingServiceCreateAlerts(t *testing.T) {
	f := seedMarketplace(t)
	request := f.newTransportRequest(t, "req-1")

	matching, err := NewMatchingService(f.db, nil)
	require.NoError(t, err)

	created, err := matching.CreateAlerts(context.Background(), request.ID)
	require.NoError(t, err)
	require.Equal(t, 3, created)

	var alerts []models.Alert
	require.NoError(t, f.db.Where("request_id = ?", request.ID).Find(&alerts).Error)
	require.Len(t, alerts, 3)

	byService := make(map[string]models.Alert, len(alerts))
	for _, alert := range alerts {
		byService[alert.ServiceID] = alert
		require.False(t, alert.IsRead, "fresh alerts start unread")
		require.False(t, alert.IsSeen)
	}

	// Provider A matched twice: once on the exact category, once on the
	// taxi child category. Provider B matched on its active service only.
	require.Equal(t, f.ProviderA, byService[f.ServiceA1].ProviderID)
	require.Equal(t, f.ProviderA, byService[f.ServiceA2].ProviderID)
	require.Equal(t, f.ProviderB, byService[f.ServiceB1].ProviderID)

	require.NotContains(t, byService, f.ServiceA3, "wrong-category service excluded")
	require.NotContains(t, byService, f.ServiceB2, "inactive service excluded")
	require.NotContains(t, byService, f.ServiceC1, "provider outside the request area excluded")
	require.NotContains(t, byService, f.ServiceD1, "suspended provider excluded")
}

func TestMatchingServiceLeafRequestAlertsParentCategoryServices(t *testing.T) {
	f := seedMarketplace(t)

	// A request posted at the taxi leaf category. Provider B's only active
	// service sits in the parent transport category and must still be
	// alerted: matching reaches one level up from a leaf.
	request := models.Request{
		BaseModel:  models.BaseModel{ID: "req-taxi"},
		ClientID:   f.BuyerID,
		AreaID:     f.CityID,
		CategoryID: &f.TaxiCategoryID,
		Type:       models.CategoryTransport,
		Status:     models.RequestOpen,
	}
	require.NoError(t, f.db.Create(&request).Error)

	matching, err := NewMatchingService(f.db, nil)
	require.NoError(t, err)

	created, err := matching.CreateAlerts(context.Background(), request.ID)
	require.NoError(t, err)
	require.Equal(t, 3, created)

	var serviceIDs []string
	require.NoError(t, f.db.Model(&models.Alert{}).
		Where("request_id = ?", request.ID).
		Pluck("service_id", &serviceIDs).Error)
	require.ElementsMatch(t, []string{f.ServiceA1, f.ServiceA2, f.ServiceB1}, serviceIDs)
}

func TestMatchingServiceCreateAlertsIsIdempotent(t *testing.T) {
	f := seedMarketplace(t)
	request := f.newTransportRequest(t, "req-1")

	matching, err := NewMatchingService(f.db, nil)
	require.NoError(t, err)

	created, err := matching.CreateAlerts(context.Background(), request.ID)
	require.NoError(t, err)
	require.Equal(t, 3, created)

	// Mark everything read, then rerun the pass. The unique tuple index
	// suppresses the duplicates and the read state survives.
	require.NoError(t, f.db.Model(&models.Alert{}).
		Where("request_id = ?", request.ID).
		Update("is_read", true).Error)

	created, err = matching.CreateAlerts(context.Background(), request.ID)
	require.NoError(t, err)
	require.Equal(t, 0, created)

	var total int64
	require.NoError(t, f.db.Model(&models.Alert{}).
		Where("request_id = ?", request.ID).
		Count(&total).Error)
	require.EqualValues(t, 3, total)

	var unread int64
	require.NoError(t, f.db.Model(&models.Alert{}).
		Where("request_id = ? AND is_read = ?", request.ID, false).
		Count(&unread).Error)
	require.Zero(t, unread)
}

func TestMatchingServiceSkipsCategorylessRequest(t *testing.T) {
	f := seedMarketplace(t)

	request := models.Request{
		BaseModel: models.BaseModel{ID: "req-nocat"},
		ClientID:  f.BuyerID,
		AreaID:    f.CityID,
		Type:      models.CategoryTransport,
		Status:    models.RequestOpen,
	}
	require.NoError(t, f.db.Create(&request).Error)

	matching, err := NewMatchingService(f.db, nil)
	require.NoError(t, err)

	created, err := matching.CreateAlerts(context.Background(), request.ID)
	require.NoError(t, err)
	require.Zero(t, created)

	var total int64
	require.NoError(t, f.db.Model(&models.Alert{}).Count(&total).Error)
	require.Zero(t, total)
}

func TestMatchingServiceNoProvidersInArea(t *testing.T) {
	f := seedMarketplace(t)

	// A request in a city where nobody sells anything.
	emptyCity := "area-empty-city"
	require.NoError(t, f.db.Create(&models.Area{
		BaseModel: models.BaseModel{ID: emptyCity},
		Tier:      models.AreaTierCity,
		Name:      "Empty City",
	}).Error)

	categoryID := "cat-transport"
	request := models.Request{
		BaseModel:  models.BaseModel{ID: "req-empty"},
		ClientID:   f.BuyerID,
		AreaID:     emptyCity,
		CategoryID: &categoryID,
		Type:       models.CategoryTransport,
		Status:     models.RequestOpen,
	}
	require.NoError(t, f.db.Create(&request).Error)

	matching, err := NewMatchingService(f.db, nil)
	require.NoError(t, err)

	created, err := matching.CreateAlerts(context.Background(), request.ID)
	require.NoError(t, err)
	require.Zero(t, created)
}

func TestMatchingServiceUnknownRequest(t *testing.T) {
	f := seedMarketplace(t)

	matching, err := NewMatchingService(f.db, nil)
	require.NoError(t, err)

	_, err = matching.CreateAlerts(context.Background(), "req-missing")
	require.Error(t, err)
}
