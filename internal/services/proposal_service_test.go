package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orlovm/bidmarket/internal/models"
	apperrors "github.com/orlovm/bidmarket/pkg/errors"
)

func TestProposalServiceCreate(t *testing.T) {
	f := seedMarketplace(t)
	request := f.newTransportRequest(t, "req-1")

	svc, err := NewProposalService(f.db, nil)
	require.NoError(t, err)

	comment := "Available all week"
	created, err := svc.Create(context.Background(), providerSession("client-a", f.ProviderA), CreateProposalInput{
		RequestID:  request.ID,
		ServiceIDs: []string{f.ServiceA1, f.ServiceA2},
		Price:      85,
		Comment:    &comment,
	})
	require.NoError(t, err)
	require.Equal(t, 2, created)

	var rows []models.Proposal
	require.NoError(t, f.db.Where("request_id = ?", request.ID).Find(&rows).Error)
	require.Len(t, rows, 2)
	for _, row := range rows {
		require.Equal(t, f.ProviderA, row.ProviderID)
		require.Equal(t, models.ProposalSubmitted, row.Status)
		require.NotNil(t, row.Price)
		require.EqualValues(t, 85, *row.Price)
		require.NotNil(t, row.Comment)
		require.Equal(t, comment, *row.Comment)
	}
}

func TestProposalServiceCreateRejectsForeignServices(t *testing.T) {
	f := seedMarketplace(t)
	request := f.newTransportRequest(t, "req-1")

	svc, err := NewProposalService(f.db, nil)
	require.NoError(t, err)

	// One owned service, one owned by provider B, one inactive. Nothing
	// is created until every selection passes.
	_, err = svc.Create(context.Background(), providerSession("client-a", f.ProviderA), CreateProposalInput{
		RequestID:  request.ID,
		ServiceIDs: []string{f.ServiceA1, f.ServiceB1, f.ServiceB2},
		Price:      85,
	})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, "proposal.services_rejected", appErr.Code)
	require.Contains(t, appErr.Message, f.ServiceB1)
	require.Contains(t, appErr.Message, f.ServiceB2)
	require.NotContains(t, appErr.Message, f.ServiceA1)

	var total int64
	require.NoError(t, f.db.Model(&models.Proposal{}).Count(&total).Error)
	require.Zero(t, total)
}

func TestProposalServiceCreateInactiveProvider(t *testing.T) {
	f := seedMarketplace(t)
	request := f.newTransportRequest(t, "req-1")

	svc, err := NewProposalService(f.db, nil)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), providerSession("client-d", f.ProviderD), CreateProposalInput{
		RequestID:  request.ID,
		ServiceIDs: []string{f.ServiceD1},
		Price:      40,
	})
	require.ErrorIs(t, err, apperrors.ErrNoActiveProvider)
}

func TestProposalServiceCreateClosedRequest(t *testing.T) {
	f := seedMarketplace(t)
	request := f.newTransportRequest(t, "req-1")
	require.NoError(t, f.db.Model(&request).Update("status", models.RequestClientClosed).Error)

	svc, err := NewProposalService(f.db, nil)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), providerSession("client-a", f.ProviderA), CreateProposalInput{
		RequestID:  request.ID,
		ServiceIDs: []string{f.ServiceA1},
		Price:      85,
	})
	require.ErrorIs(t, err, apperrors.ErrRequestNotOpen)
}

func TestProposalServiceCreateUnknownRequest(t *testing.T) {
	f := seedMarketplace(t)

	svc, err := NewProposalService(f.db, nil)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), providerSession("client-a", f.ProviderA), CreateProposalInput{
		RequestID:  "req-missing",
		ServiceIDs: []string{f.ServiceA1},
		Price:      85,
	})
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProposalServiceListForRequest(t *testing.T) {
	f := seedMarketplace(t)
	request := f.newTransportRequest(t, "req-1")

	svc, err := NewProposalService(f.db, nil)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), providerSession("client-a", f.ProviderA), CreateProposalInput{
		RequestID:  request.ID,
		ServiceIDs: []string{f.ServiceA1},
		Price:      85,
	})
	require.NoError(t, err)

	items, err := svc.ListForRequest(context.Background(), clientSession(f.BuyerID), request.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, f.ServiceA1, items[0].ServiceID)

	// A client who does not own the request gets not-found, never
	// another client's proposals.
	_, err = svc.ListForRequest(context.Background(), clientSession("client-a"), request.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProposalServiceWithdraw(t *testing.T) {
	f := seedMarketplace(t)
	request := f.newTransportRequest(t, "req-1")

	svc, err := NewProposalService(f.db, nil)
	require.NoError(t, err)

	session := providerSession("client-a", f.ProviderA)
	_, err = svc.Create(context.Background(), session, CreateProposalInput{
		RequestID:  request.ID,
		ServiceIDs: []string{f.ServiceA1},
		Price:      85,
	})
	require.NoError(t, err)

	var proposal models.Proposal
	require.NoError(t, f.db.First(&proposal, "request_id = ?", request.ID).Error)

	require.NoError(t, svc.Withdraw(context.Background(), session, proposal.ID))

	var reloaded models.Proposal
	require.NoError(t, f.db.First(&reloaded, "id = ?", proposal.ID).Error)
	require.Equal(t, models.ProposalWithdrawn, reloaded.Status)

	// Already withdrawn.
	require.Error(t, svc.Withdraw(context.Background(), session, proposal.ID))

	// Somebody else's proposal is invisible.
	require.ErrorIs(t,
		svc.Withdraw(context.Background(), providerSession("client-b", f.ProviderB), proposal.ID),
		apperrors.ErrNotFound,
	)
}
