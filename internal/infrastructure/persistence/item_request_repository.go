package persistence

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/atthompson13/aa-shoppingcart/internal/domain/cart"
	"github.com/atthompson13/aa-shoppingcart/internal/domain/shared"
	"github.com/atthompson13/aa-shoppingcart/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormItemRequestRepository implements cart.ItemRequestRepository using GORM
type GormItemRequestRepository struct {
	db *gorm.DB
}

// NewGormItemRequestRepository creates a new GormItemRequestRepository
func NewGormItemRequestRepository(db *gorm.DB) *GormItemRequestRepository {
	return &GormItemRequestRepository{db: db}
}

// FindByID finds an item request by its ID
func (r *GormItemRequestRepository) FindByID(ctx context.Context, id int64) (*cart.ItemRequest, error) {
	var m models.ItemRequestModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, cart.ErrRequestNotFound
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// Save inserts a new request or updates an existing one with a version check
func (r *GormItemRequestRepository) Save(ctx context.Context, req *cart.ItemRequest) error {
	return r.save(r.db.WithContext(ctx), req)
}

// SaveWithTracking saves the request and the fulfiller's tracking row atomically
func (r *GormItemRequestRepository) SaveWithTracking(ctx context.Context, req *cart.ItemRequest, tracking *cart.FulfillmentTracking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.save(tx, req); err != nil {
			return err
		}
		if tracking == nil {
			return nil
		}
		return saveTracking(tx, tracking)
	})
}

func (r *GormItemRequestRepository) save(tx *gorm.DB, req *cart.ItemRequest) error {
	m := models.ItemRequestModelFromDomain(req)

	if req.IsNew() {
		if err := tx.Create(m).Error; err != nil {
			return translateWriteError(err)
		}
		req.ID = m.ID
		for _, e := range req.GetDomainEvents() {
			if setter, ok := e.(shared.AggregateIDSetter); ok {
				setter.SetAggregateID(m.ID)
			}
		}
		return nil
	}

	current := req.Version
	m.Version = current + 1

	result := tx.Model(&models.ItemRequestModel{}).
		Where("id = ? AND version = ?", req.ID, current).
		Select("*").
		Omit("id", "created_at").
		Updates(m)
	if result.Error != nil {
		return translateWriteError(result.Error)
	}
	if result.RowsAffected == 0 {
		var exists int64
		if err := tx.Model(&models.ItemRequestModel{}).Where("id = ?", req.ID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return cart.ErrRequestNotFound
		}
		return shared.ErrConcurrencyConflict
	}

	req.Version = m.Version
	return nil
}

func translateWriteError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return cart.ErrContractIDTaken.WithCause(err)
	}
	return err
}

// Delete removes a request
func (r *GormItemRequestRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.ItemRequestModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return cart.ErrRequestNotFound
	}
	return nil
}

// FindByUser lists requests created by a user
func (r *GormItemRequestRepository) FindByUser(ctx context.Context, userID int64, filter shared.Filter) ([]cart.ItemRequest, error) {
	return r.find(r.model(ctx).Where("user_id = ?", userID), filter)
}

// FindClaimable lists pending requests without a fulfiller
func (r *GormItemRequestRepository) FindClaimable(ctx context.Context, filter shared.Filter) ([]cart.ItemRequest, error) {
	return r.find(r.claimable(ctx), filter)
}

// FindClaimableForUser lists claimable requests that userID did not create
func (r *GormItemRequestRepository) FindClaimableForUser(ctx context.Context, userID int64, filter shared.Filter) ([]cart.ItemRequest, error) {
	return r.find(r.claimable(ctx).Where("user_id <> ?", userID), filter)
}

// FindUserClaims lists requests claimed by userID that are still in progress
func (r *GormItemRequestRepository) FindUserClaims(ctx context.Context, userID int64, filter shared.Filter) ([]cart.ItemRequest, error) {
	return r.find(
		r.model(ctx).Where("fulfiller_id = ? AND status IN ?", userID, cart.StatusStrings(cart.ClaimedStatuses)),
		filter,
	)
}

// FindActive lists requests that have not finished
func (r *GormItemRequestRepository) FindActive(ctx context.Context, filter shared.Filter) ([]cart.ItemRequest, error) {
	return r.find(r.model(ctx).Where("status NOT IN ?", cart.StatusStrings(cart.FinishedStatuses)), filter)
}

// FindAll lists requests matching the filter
func (r *GormItemRequestRepository) FindAll(ctx context.Context, filter shared.Filter) ([]cart.ItemRequest, error) {
	return r.find(r.model(ctx), filter)
}

// FindStale lists requests in one of statuses last touched before the cutoff, oldest first
func (r *GormItemRequestRepository) FindStale(ctx context.Context, statuses []cart.Status, before time.Time, limit int) ([]cart.ItemRequest, error) {
	if len(statuses) == 0 {
		return []cart.ItemRequest{}, nil
	}
	query := r.model(ctx).
		Where("status IN ? AND updated_at < ?", cart.StatusStrings(statuses), before).
		Order("updated_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []models.ItemRequestModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainRequests(rows), nil
}

// Count counts requests matching the filter, ignoring pagination
func (r *GormItemRequestRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilterWithoutPagination(r.model(ctx), filter).Count(&count).Error
	return count, err
}

// CountByStatus counts all requests in a status
func (r *GormItemRequestRepository) CountByStatus(ctx context.Context, status cart.Status) (int64, error) {
	return r.count(r.model(ctx).Where("status = ?", status))
}

// CountByUser counts requests created by a user
func (r *GormItemRequestRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	return r.count(r.model(ctx).Where("user_id = ?", userID))
}

// CountActiveByUser counts a user's requests that have not finished
func (r *GormItemRequestRepository) CountActiveByUser(ctx context.Context, userID int64) (int64, error) {
	return r.count(r.model(ctx).Where("user_id = ? AND status NOT IN ?", userID, cart.StatusStrings(cart.FinishedStatuses)))
}

// CountByUserAndStatus counts a user's requests in a status
func (r *GormItemRequestRepository) CountByUserAndStatus(ctx context.Context, userID int64, status cart.Status) (int64, error) {
	return r.count(r.model(ctx).Where("user_id = ? AND status = ?", userID, status))
}

// ExistsByContractID reports whether contractID is linked to a request other than excludeID
func (r *GormItemRequestRepository) ExistsByContractID(ctx context.Context, contractID int64, excludeID int64) (bool, error) {
	count, err := r.count(r.model(ctx).Where("contract_id = ? AND id <> ?", contractID, excludeID))
	return count > 0, err
}

// DeleteFinishedBefore removes finished requests last touched before the cutoff
func (r *GormItemRequestRepository) DeleteFinishedBefore(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status IN ? AND updated_at < ?", cart.StatusStrings(cart.FinishedStatuses), before).
		Delete(&models.ItemRequestModel{})
	return result.RowsAffected, result.Error
}

func (r *GormItemRequestRepository) model(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.ItemRequestModel{})
}

func (r *GormItemRequestRepository) claimable(ctx context.Context) *gorm.DB {
	return r.model(ctx).Where("status = ? AND fulfiller_id IS NULL", cart.StatusPending)
}

func (r *GormItemRequestRepository) count(query *gorm.DB) (int64, error) {
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormItemRequestRepository) find(query *gorm.DB, filter shared.Filter) ([]cart.ItemRequest, error) {
	var rows []models.ItemRequestModel
	if err := r.applyFilter(query, filter).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainRequests(rows), nil
}

func toDomainRequests(rows []models.ItemRequestModel) []cart.ItemRequest {
	out := make([]cart.ItemRequest, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// applyFilter applies filter options to the query
func (r *GormItemRequestRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	return itemRequestSort.apply(query, filter)
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormItemRequestRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		cond := "LOWER(username) LIKE ? OR LOWER(character_name) LIKE ? OR LOWER(fulfiller_username) LIKE ? OR LOWER(pickup_location) LIKE ? OR LOWER(delivery_location) LIKE ?"
		args := []any{pattern, pattern, pattern, pattern, pattern}
		// contract ids are pasted whole from the game client
		if contractID, err := strconv.ParseInt(search, 10, 64); err == nil {
			cond += " OR contract_id = ?"
			args = append(args, contractID)
		}
		query = query.Where(cond, args...)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			if s, ok := value.(string); ok && s != "" {
				query = query.Where("status = ?", s)
			}
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "request_type":
			if s, ok := value.(string); ok && s != "" {
				query = query.Where("request_type = ?", s)
			}
		case "user_id":
			query = query.Where("user_id = ?", value)
		case "fulfiller_id":
			query = query.Where("fulfiller_id = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		}
	}

	return query
}
