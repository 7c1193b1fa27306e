package cart

import (
	"context"
	"time"

	"github.com/atthompson13/aa-shoppingcart/internal/domain/shared"
)

// ItemRequestRepository defines the interface for item request persistence
type ItemRequestRepository interface {
	// FindByID finds an item request by ID
	FindByID(ctx context.Context, id int64) (*ItemRequest, error)

	// Save inserts a new request or updates an existing one with an optimistic
	// version check. Returns shared.ErrConcurrencyConflict when the stored
	// version no longer matches.
	Save(ctx context.Context, req *ItemRequest) error

	// SaveWithTracking saves the request and the fulfiller's tracking row in one transaction
	SaveWithTracking(ctx context.Context, req *ItemRequest, tracking *FulfillmentTracking) error

	// Delete removes a request
	Delete(ctx context.Context, id int64) error

	// FindByUser lists requests created by a user, newest first
	FindByUser(ctx context.Context, userID int64, filter shared.Filter) ([]ItemRequest, error)

	// FindClaimable lists pending requests without a fulfiller
	FindClaimable(ctx context.Context, filter shared.Filter) ([]ItemRequest, error)

	// FindClaimableForUser lists claimable requests not created by userID
	FindClaimableForUser(ctx context.Context, userID int64, filter shared.Filter) ([]ItemRequest, error)

	// FindUserClaims lists requests a user has claimed and not yet finished
	FindUserClaims(ctx context.Context, userID int64, filter shared.Filter) ([]ItemRequest, error)

	// FindActive lists requests that are not completed, cancelled or expired
	FindActive(ctx context.Context, filter shared.Filter) ([]ItemRequest, error)

	// FindAll lists requests matching the admin filter
	FindAll(ctx context.Context, filter shared.Filter) ([]ItemRequest, error)

	// FindStale lists requests in one of statuses last updated before cutoff
	FindStale(ctx context.Context, statuses []Status, before time.Time, limit int) ([]ItemRequest, error)

	// Count counts requests matching the admin filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByStatus counts all requests in a status
	CountByStatus(ctx context.Context, status Status) (int64, error)

	// CountByUser counts requests created by a user
	CountByUser(ctx context.Context, userID int64) (int64, error)

	// CountActiveByUser counts a user's requests that have not finished
	CountActiveByUser(ctx context.Context, userID int64) (int64, error)

	// CountByUserAndStatus counts a user's requests in a status
	CountByUserAndStatus(ctx context.Context, userID int64, status Status) (int64, error)

	// ExistsByContractID reports whether a contract ID is already linked to a request other than excludeID
	ExistsByContractID(ctx context.Context, contractID int64, excludeID int64) (bool, error)

	// DeleteFinishedBefore removes completed, cancelled and expired requests
	// last updated before cutoff and returns the number deleted
	DeleteFinishedBefore(ctx context.Context, before time.Time) (int64, error)
}

// FulfillmentTrackingRepository defines the interface for leaderboard statistics
type FulfillmentTrackingRepository interface {
	// FindByUser finds the tracking row for a fulfiller
	FindByUser(ctx context.Context, userID int64) (*FulfillmentTracking, error)

	// Save creates or updates a tracking row
	Save(ctx context.Context, tracking *FulfillmentTracking) error

	// FindTop lists fulfillers ordered by total fulfilled, highest first
	FindTop(ctx context.Context, limit int) ([]FulfillmentTracking, error)

	// FindAll lists tracking rows matching the admin filter
	FindAll(ctx context.Context, filter shared.Filter) ([]FulfillmentTracking, error)

	// Count counts tracking rows matching the admin filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
