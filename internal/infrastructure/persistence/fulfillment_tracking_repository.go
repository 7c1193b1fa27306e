package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/atthompson13/aa-shoppingcart/internal/domain/cart"
	"github.com/atthompson13/aa-shoppingcart/internal/domain/shared"
	"github.com/atthompson13/aa-shoppingcart/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormFulfillmentTrackingRepository implements cart.FulfillmentTrackingRepository using GORM
type GormFulfillmentTrackingRepository struct {
	db *gorm.DB
}

// NewGormFulfillmentTrackingRepository creates a new GormFulfillmentTrackingRepository
func NewGormFulfillmentTrackingRepository(db *gorm.DB) *GormFulfillmentTrackingRepository {
	return &GormFulfillmentTrackingRepository{db: db}
}

// FindByUser finds the tracking row for a fulfiller
func (r *GormFulfillmentTrackingRepository) FindByUser(ctx context.Context, userID int64) (*cart.FulfillmentTracking, error) {
	var m models.FulfillmentTrackingModel
	if err := r.db.WithContext(ctx).First(&m, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// Save creates or updates a tracking row. Updates of a stale copy fail
// with shared.ErrConcurrencyConflict.
func (r *GormFulfillmentTrackingRepository) Save(ctx context.Context, tracking *cart.FulfillmentTracking) error {
	return saveTracking(r.db.WithContext(ctx), tracking)
}

func saveTracking(tx *gorm.DB, tracking *cart.FulfillmentTracking) error {
	m := models.FulfillmentTrackingModelFromDomain(tracking)
	if tracking.IsNew() {
		if err := tx.Create(m).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.ErrAlreadyExists.WithCause(err)
			}
			return err
		}
		tracking.ID = m.ID
		return nil
	}

	current := tracking.Version
	m.Version = current + 1
	result := tx.Model(&models.FulfillmentTrackingModel{}).
		Where("id = ? AND version = ?", tracking.ID, current).
		Select("*").
		Omit("id", "created_at").
		Updates(m)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var exists int64
		if err := tx.Model(&models.FulfillmentTrackingModel{}).Where("id = ?", tracking.ID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrConcurrencyConflict
	}
	tracking.Version = m.Version
	return nil
}

// FindTop lists fulfillers with at least one completion, most fulfilled first
func (r *GormFulfillmentTrackingRepository) FindTop(ctx context.Context, limit int) ([]cart.FulfillmentTracking, error) {
	query := r.db.WithContext(ctx).
		Where("total_fulfilled > 0").
		Order("total_fulfilled DESC").
		Order("rating DESC").
		Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []models.FulfillmentTrackingModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainTracking(rows), nil
}

// FindAll lists tracking rows matching the filter
func (r *GormFulfillmentTrackingRepository) FindAll(ctx context.Context, filter shared.Filter) ([]cart.FulfillmentTracking, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.FulfillmentTrackingModel{}), filter)
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	query = fulfillmentSort.apply(query, filter)

	var rows []models.FulfillmentTrackingModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainTracking(rows), nil
}

// Count counts tracking rows matching the filter
func (r *GormFulfillmentTrackingRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.FulfillmentTrackingModel{}), filter).Count(&count).Error
	return count, err
}

func (r *GormFulfillmentTrackingRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("LOWER(username) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	return query
}

func toDomainTracking(rows []models.FulfillmentTrackingModel) []cart.FulfillmentTracking {
	out := make([]cart.FulfillmentTracking, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}
