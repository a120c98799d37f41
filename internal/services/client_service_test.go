package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orlovm/bidmarket/internal/models"
	apperrors "github.com/orlovm/bidmarket/pkg/errors"
)

func TestClientServiceCurrentAreaID(t *testing.T) {
	f := seedMarketplace(t)

	svc, err := NewClientService(f.db)
	require.NoError(t, err)

	areaID, err := svc.CurrentAreaID(context.Background(), f.BuyerID)
	require.NoError(t, err)
	require.Equal(t, f.CityID, areaID)

	nomad := models.Client{
		BaseModel: models.BaseModel{ID: "client-nomad"},
		Name:      "Nomad",
		Email:     "nomad@example.com",
	}
	require.NoError(t, f.db.Create(&nomad).Error)

	_, err = svc.CurrentAreaID(context.Background(), nomad.ID)
	require.ErrorIs(t, err, apperrors.ErrClientAreaMissing)

	_, err = svc.CurrentAreaID(context.Background(), "client-missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestClientServiceUpdateLocation(t *testing.T) {
	f := seedMarketplace(t)

	svc, err := NewClientService(f.db)
	require.NoError(t, err)

	require.NoError(t, svc.UpdateLocation(context.Background(), f.BuyerID, f.OtherCityID))

	client, err := svc.Get(context.Background(), f.BuyerID)
	require.NoError(t, err)
	require.NotNil(t, client.CurrentAreaID)
	require.Equal(t, f.OtherCityID, *client.CurrentAreaID)

	// Only tier-3 areas are selectable.
	err = svc.UpdateLocation(context.Background(), f.BuyerID, "area-region")
	require.Error(t, err)

	err = svc.UpdateLocation(context.Background(), f.BuyerID, "area-missing")
	require.Error(t, err)

	require.ErrorIs(t,
		svc.UpdateLocation(context.Background(), "client-missing", f.CityID),
		apperrors.ErrNotFound,
	)
}
