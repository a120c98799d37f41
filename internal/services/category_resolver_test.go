package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orlovm/bidmarket/internal/models"
	apperrors "github.com/orlovm/bidmarket/pkg/errors"
)

func TestCategoryResolverMatchingCategoryIDs(t *testing.T) {
	f := seedMarketplace(t)

	resolver, err := NewCategoryResolver(f.db)
	require.NoError(t, err)

	ids, err := resolver.MatchingCategoryIDs(context.Background(), "cat-transport")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"cat-transport", f.TaxiCategoryID}, ids)

	// Leaf categories also reach one level up to their parent.
	ids, err = resolver.MatchingCategoryIDs(context.Background(), f.TaxiCategoryID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{f.TaxiCategoryID, "cat-transport"}, ids)
}

func TestCategoryResolverMatches(t *testing.T) {
	f := seedMarketplace(t)

	resolver, err := NewCategoryResolver(f.db)
	require.NoError(t, err)

	ok, err := resolver.Matches(context.Background(), "cat-transport", f.TaxiCategoryID)
	require.NoError(t, err)
	require.True(t, ok, "direct child matches its parent")

	ok, err = resolver.Matches(context.Background(), "cat-transport", "cat-transport")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = resolver.Matches(context.Background(), "cat-transport", "cat-accommodation")
	require.NoError(t, err)
	require.False(t, ok, "sibling top-level categories never match")

	// Matching reaches one level up as well: a leaf target accepts its
	// direct parent, but never an unrelated top-level category.
	ok, err = resolver.Matches(context.Background(), f.TaxiCategoryID, "cat-transport")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = resolver.Matches(context.Background(), f.TaxiCategoryID, "cat-accommodation")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCategoryResolverResolveBySysname(t *testing.T) {
	f := seedMarketplace(t)

	resolver, err := NewCategoryResolver(f.db)
	require.NoError(t, err)

	category, err := resolver.ResolveBySysname(context.Background(), models.CategoryTransport)
	require.NoError(t, err)
	require.Equal(t, "cat-transport", category.ID)
	require.True(t, category.IsTopLevel())

	_, err = resolver.ResolveBySysname(context.Background(), "plumbing")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, http.StatusBadRequest, appErr.StatusCode)
}
