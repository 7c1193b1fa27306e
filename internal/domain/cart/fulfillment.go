package cart

import (
	"fmt"
	"time"

	"github.com/atthompson13/aa-shoppingcart/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DefaultRating is the rating a fulfiller starts with
var DefaultRating = decimal.NewFromInt(5)

// FulfillmentTracking keeps leaderboard statistics for one fulfiller.
// Counters are read-modify-write, so saves are version checked like ItemRequest.
type FulfillmentTracking struct {
	shared.BaseAggregateRoot
	UserID         int64
	Username       string
	TotalFulfilled int
	TotalVolume    int64
	LastFulfilled  *time.Time
	Rating         decimal.Decimal
	TotalRatings   int
}

// NewFulfillmentTracking starts tracking for a fulfiller
func NewFulfillmentTracking(userID int64, username string, now time.Time) (*FulfillmentTracking, error) {
	if userID <= 0 {
		return nil, shared.NewDomainError("INVALID_USER", "Fulfiller is required")
	}
	return &FulfillmentTracking{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(now),
		UserID:            userID,
		Username:          username,
		Rating:            DefaultRating,
	}, nil
}

// RecordFulfillment counts a completed request of the given total quantity
func (f *FulfillmentTracking) RecordFulfillment(quantity int64, at time.Time) {
	f.TotalFulfilled++
	f.TotalVolume = addQuantity(f.TotalVolume, quantity)
	f.LastFulfilled = &at
	f.Touch(at)
}

// AddRating folds score into the running average, rounded to two places.
// The default rating is replaced by the first real score.
func (f *FulfillmentTracking) AddRating(score int, at time.Time) error {
	if score < MinRating || score > MaxRating {
		return shared.NewDomainError("INVALID_RATING",
			fmt.Sprintf("Rating must be between %d and %d", MinRating, MaxRating))
	}
	s := decimal.NewFromInt(int64(score))
	if f.TotalRatings == 0 {
		f.Rating = s.Round(2)
	} else {
		n := decimal.NewFromInt(int64(f.TotalRatings))
		f.Rating = f.Rating.Mul(n).Add(s).Div(n.Add(decimal.NewFromInt(1))).Round(2)
	}
	f.TotalRatings++
	f.Touch(at)
	return nil
}

// String renders "username - 3 fulfilled"
func (f *FulfillmentTracking) String() string {
	return fmt.Sprintf("%s - %d fulfilled", f.Username, f.TotalFulfilled)
}
