package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/orlovm/bidmarket/internal/models"
	apperrors "github.com/orlovm/bidmarket/pkg/errors"
)

// CategoryResolver answers category-tree membership questions for the
// matching engine. Matching is deliberately one level deep in either
// direction: a service category matches a request category when the ids are
// equal, when the service category is a direct child of the request
// category, or when it is its direct parent.
type CategoryResolver struct {
	db *gorm.DB
}

// NewCategoryResolver constructs a CategoryResolver.
func NewCategoryResolver(db *gorm.DB) (*CategoryResolver, error) {
	if db == nil {
		return nil, errors.New("category resolver: db is required")
	}
	return &CategoryResolver{db: db}, nil
}

// MatchingCategoryIDs returns the target category id, the ids of its direct
// children and, for leaf targets, the id of its direct parent. The tree is
// two levels deep in practice; if it ever grows deeper this becomes an
// ancestor-closure lookup instead.
func (r *CategoryResolver) MatchingCategoryIDs(ctx context.Context, categoryID string) ([]string, error) {
	ctx = ensureContext(ctx)

	ids := []string{categoryID}

	var target models.Category
	if err := r.db.WithContext(ctx).
		Select("id", "parent_id").
		First(&target, "id = ?", categoryID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("category resolver: load target: %w", err)
		}
	} else if target.ParentID != nil && *target.ParentID != "" {
		ids = append(ids, *target.ParentID)
	}

	var childIDs []string
	if err := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("parent_id = ?", categoryID).
		Pluck("id", &childIDs).Error; err != nil {
		return nil, fmt.Errorf("category resolver: load children: %w", err)
	}

	return append(ids, childIDs...), nil
}

// Matches reports whether candidateID equals targetID, is one of its direct
// children or is its direct parent.
func (r *CategoryResolver) Matches(ctx context.Context, targetID, candidateID string) (bool, error) {
	if targetID == candidateID {
		return true, nil
	}

	ids, err := r.MatchingCategoryIDs(ctx, targetID)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == candidateID {
			return true, nil
		}
	}
	return false, nil
}

// ResolveBySysname loads the category with the given stable type key.
func (r *CategoryResolver) ResolveBySysname(ctx context.Context, sysname string) (*models.Category, error) {
	ctx = ensureContext(ctx)

	var category models.Category
	if err := r.db.WithContext(ctx).
		Where("sysname = ?", sysname).
		First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewBadRequest(fmt.Sprintf("unknown request type %q", sysname))
		}
		return nil, fmt.Errorf("category resolver: load by sysname: %w", err)
	}
	return &category, nil
}
