package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/orlovm/bidmarket/internal/auth"
	"github.com/orlovm/bidmarket/internal/database/testutil"
	"github.com/orlovm/bidmarket/internal/models"
)

// marketplaceFixture is the standard scene most service tests run against:
// a buyer sitting in a city, two providers selling transport services in the
// same city, one provider in another city and one suspended provider.
type marketplaceFixture struct {
	db *gorm.DB

	CityID      string
	OtherCityID string

	BuyerID string

	ProviderA string
	ProviderB string
	ProviderC string
	ProviderD string

	ServiceA1 string // provider A, transport
	ServiceA2 string // provider A, taxi (child of transport)
	ServiceA3 string // provider A, accommodation
	ServiceB1 string // provider B, transport
	ServiceB2 string // provider B, transport, inactive
	ServiceC1 string // provider C (other city), transport
	ServiceD1 string // provider D (suspended), transport

	TaxiCategoryID string
}

func seedMarketplace(t *testing.T) *marketplaceFixture {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())

	f := &marketplaceFixture{
		db:          db,
		CityID:      "area-city",
		OtherCityID: "area-other-city",
		BuyerID:     "client-buyer",
		ProviderA:   "prov-a",
		ProviderB:   "prov-b",
		ProviderC:   "prov-c",
		ProviderD:   "prov-d",
		ServiceA1:   "svc-a1",
		ServiceA2:   "svc-a2",
		ServiceA3:   "svc-a3",
		ServiceB1:   "svc-b1",
		ServiceB2:   "svc-b2",
		ServiceC1:   "svc-c1",
		ServiceD1:   "svc-d1",

		TaxiCategoryID: "cat-transport-taxi",
	}

	countryID := "area-country"
	regionID := "area-region"
	areas := []models.Area{
		{BaseModel: models.BaseModel{ID: countryID}, Tier: models.AreaTierCountry, Name: "Country"},
		{BaseModel: models.BaseModel{ID: regionID}, ParentID: &countryID, Tier: models.AreaTierRegion, Name: "Region"},
		{BaseModel: models.BaseModel{ID: f.CityID}, ParentID: &regionID, Tier: models.AreaTierCity, Name: "City"},
		{BaseModel: models.BaseModel{ID: f.OtherCityID}, ParentID: &regionID, Tier: models.AreaTierCity, Name: "Other City"},
	}
	for i := range areas {
		require.NoError(t, db.Create(&areas[i]).Error)
	}

	transportID := "cat-transport"
	require.NoError(t, db.Create(&models.Category{
		BaseModel: models.BaseModel{ID: f.TaxiCategoryID},
		ParentID:  &transportID,
		Sysname:   "transport.taxi",
		Name:      "Taxi",
	}).Error)

	cityID := f.CityID
	otherCityID := f.OtherCityID
	clients := []models.Client{
		{BaseModel: models.BaseModel{ID: f.BuyerID}, Name: "Buyer", Email: "buyer@example.com", CurrentAreaID: &cityID},
		{BaseModel: models.BaseModel{ID: "client-a"}, Name: "Owner A", Email: "a@example.com", CurrentAreaID: &cityID},
		{BaseModel: models.BaseModel{ID: "client-b"}, Name: "Owner B", Email: "b@example.com", CurrentAreaID: &cityID},
		{BaseModel: models.BaseModel{ID: "client-c"}, Name: "Owner C", Email: "c@example.com", CurrentAreaID: &otherCityID},
		{BaseModel: models.BaseModel{ID: "client-d"}, Name: "Owner D", Email: "d@example.com", CurrentAreaID: &cityID},
	}
	for i := range clients {
		require.NoError(t, db.Create(&clients[i]).Error)
	}

	providers := []models.Provider{
		{BaseModel: models.BaseModel{ID: f.ProviderA}, ClientID: "client-a", Name: "Alpha Rides", Status: models.ProviderActive},
		{BaseModel: models.BaseModel{ID: f.ProviderB}, ClientID: "client-b", Name: "Beta Wheels", Status: models.ProviderActive},
		{BaseModel: models.BaseModel{ID: f.ProviderC}, ClientID: "client-c", Name: "Gamma Cabs", Status: models.ProviderActive},
		{BaseModel: models.BaseModel{ID: f.ProviderD}, ClientID: "client-d", Name: "Delta Vans", Status: models.ProviderSuspended},
	}
	for i := range providers {
		require.NoError(t, db.Create(&providers[i]).Error)
	}

	services := []models.Service{
		{BaseModel: models.BaseModel{ID: f.ServiceA1}, ProviderID: f.ProviderA, CategoryID: "cat-transport", Title: "City transfer", Active: true},
		{BaseModel: models.BaseModel{ID: f.ServiceA2}, ProviderID: f.ProviderA, CategoryID: f.TaxiCategoryID, Title: "Airport taxi", Active: true},
		{BaseModel: models.BaseModel{ID: f.ServiceA3}, ProviderID: f.ProviderA, CategoryID: "cat-accommodation", Title: "Guest room", Active: true},
		{BaseModel: models.BaseModel{ID: f.ServiceB1}, ProviderID: f.ProviderB, CategoryID: "cat-transport", Title: "Minibus hire", Active: true},
		{BaseModel: models.BaseModel{ID: f.ServiceB2}, ProviderID: f.ProviderB, CategoryID: "cat-transport", Title: "Retired route", Active: false},
		{BaseModel: models.BaseModel{ID: f.ServiceC1}, ProviderID: f.ProviderC, CategoryID: "cat-transport", Title: "Out-of-town taxi", Active: true},
		{BaseModel: models.BaseModel{ID: f.ServiceD1}, ProviderID: f.ProviderD, CategoryID: "cat-transport", Title: "Dormant vans", Active: true},
	}
	for i := range services {
		require.NoError(t, db.Create(&services[i]).Error)
	}

	return f
}

// newTransportRequest inserts an open transport request posted by the buyer.
func (f *marketplaceFixture) newTransportRequest(t *testing.T, id string) models.Request {
	t.Helper()

	categoryID := "cat-transport"
	request := models.Request{
		BaseModel:  models.BaseModel{ID: id},
		ClientID:   f.BuyerID,
		AreaID:     f.CityID,
		CategoryID: &categoryID,
		Type:       models.CategoryTransport,
		Status:     models.RequestOpen,
	}
	require.NoError(t, f.db.Create(&request).Error)
	return request
}

func clientSession(userID string) auth.Session {
	return auth.Session{UserID: userID, Role: auth.RoleClient}
}

func providerSession(userID, providerID string) auth.Session {
	return auth.Session{UserID: userID, Role: auth.RoleProvider, ProviderID: providerID}
}
