package services

import (
	"context"
	"strconv"

	"iris-api/models"
	"iris-api/repository"
)

// CatalogService serves read-only reference data.
type CatalogService struct {
	base
}

func NewCatalogService(store repository.Store, opts Options) *CatalogService {
	return &CatalogService{base: newBase(store, opts)}
}

func (s *CatalogService) Categories(ctx context.Context) ([]models.ImprovementCategory, error) {
	return s.store.ListCategories(ctx)
}

// SubCategories lists subcategories of categoryID, or all when it is zero.
func (s *CatalogService) SubCategories(ctx context.Context, categoryID uint) ([]models.ImprovementSubCategory, error) {
	if categoryID != 0 {
		if _, err := s.store.GetCategory(ctx, categoryID); err != nil {
			return nil, notFoundAs(err, "category", strconv.FormatUint(uint64(categoryID), 10))
		}
	}
	return s.store.ListSubCategories(ctx, categoryID)
}

func (s *CatalogService) ReviewParameters(ctx context.Context) ([]models.ReviewParameter, error) {
	return s.store.ListReviewParameters(ctx, true)
}
