package cart

import (
	"cmp"
	"time"

	"github.com/atthompson13/aa-shoppingcart/internal/domain/cart"
	"github.com/atthompson13/aa-shoppingcart/internal/domain/shared"
)

// ========================================================================
// Requests
// ========================================================================

// CreateRequestInput is the body of a new item request
type CreateRequestInput struct {
	RequestType             string `json:"request_type" binding:"omitempty,request_type"`
	ItemsText               string `json:"items_text"`
	PickupLocation          string `json:"pickup_location" binding:"max=255"`
	DeliveryLocation        string `json:"delivery_location" binding:"max=255"`
	Description             string `json:"description" binding:"max=4000"`
	RequesterPrice          *int64 `json:"requester_price" binding:"omitempty,isk"`
	RequesterCollateral     int64  `json:"requester_collateral" binding:"isk"`
	RequesterExpirationDays int    `json:"requester_expiration_days" binding:"omitempty,min=1,max=14"`
	MaxBudget               *int64 `json:"max_budget" binding:"omitempty,isk"`
}

// SubmitContractInput links a requester-issued contract
type SubmitContractInput struct {
	ContractID int64 `json:"contract_id" binding:"required,min=1"`
}

// FulfillerContractInput carries the fulfiller's terms and contract
type FulfillerContractInput struct {
	ContractID     int64  `json:"contract_id" binding:"required,min=1"`
	Price          int64  `json:"price" binding:"isk"`
	Collateral     int64  `json:"collateral" binding:"isk"`
	ExpirationDays int    `json:"expiration_days" binding:"omitempty,min=1,max=14"`
	Notes          string `json:"notes" binding:"max=4000"`
}

// RateInput scores the fulfiller of a completed request
type RateInput struct {
	Score int `json:"score" binding:"required,min=1,max=5"`
}

// ParsePreviewInput is pasted EVE item text to preview
type ParsePreviewInput struct {
	ItemsText string `json:"items_text"`
}

// PageQuery selects a page of a player's list
type PageQuery struct {
	Page int `form:"page" binding:"omitempty,min=1"`
}

// AdminRequestFilter filters the admin request list
type AdminRequestFilter struct {
	Page        int        `form:"page" binding:"omitempty,min=1"`
	PageSize    int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search      string     `form:"search"`
	Status      string     `form:"status" binding:"omitempty,oneof=pending claimed contract_created contract_accepted completed cancelled expired"`
	RequestType string     `form:"request_type" binding:"omitempty,request_type"`
	UserID      *int64     `form:"user_id" binding:"omitempty,min=1"`
	FulfillerID *int64     `form:"fulfiller_id" binding:"omitempty,min=1"`
	StartDate   *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate     *time.Time `form:"end_date" time_format:"2006-01-02"`
	OrderBy     string     `form:"order_by"`
	OrderDir    string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// FulfillerFilter filters the admin fulfiller list
type FulfillerFilter struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func (f AdminRequestFilter) toFilter(defaultPageSize int) shared.Filter {
	filter := shared.NewPageFilter(f.Page, cmp.Or(f.PageSize, defaultPageSize)).
		Sort(f.OrderBy, f.OrderDir)
	filter.Search = f.Search
	if f.Status != "" {
		filter = filter.Where("status", f.Status)
	}
	if f.RequestType != "" {
		filter = filter.Where("request_type", f.RequestType)
	}
	if f.UserID != nil {
		filter = filter.Where("user_id", *f.UserID)
	}
	if f.FulfillerID != nil {
		filter = filter.Where("fulfiller_id", *f.FulfillerID)
	}
	if f.StartDate != nil {
		filter = filter.Where("start_date", *f.StartDate)
	}
	if f.EndDate != nil {
		// inclusive of the whole end day
		filter = filter.Where("end_date", f.EndDate.Add(24*time.Hour-time.Nanosecond))
	}
	return filter
}

func (f FulfillerFilter) toFilter(defaultPageSize int) shared.Filter {
	filter := shared.NewPageFilter(f.Page, cmp.Or(f.PageSize, defaultPageSize)).
		Sort("total_fulfilled", "").
		Sort(f.OrderBy, f.OrderDir)
	filter.Search = f.Search
	return filter
}

// ========================================================================
// Responses
// ========================================================================

// ItemRequestResponse is an item request as shown to players
type ItemRequestResponse struct {
	ID                      int64            `json:"id"`
	Display                 string           `json:"display"`
	UserID                  int64            `json:"user_id"`
	Username                string           `json:"username"`
	Character               cart.Character   `json:"character"`
	FulfillerID             *int64           `json:"fulfiller_id,omitempty"`
	FulfillerUsername       string           `json:"fulfiller_username,omitempty"`
	FulfillerCharacter      *cart.Character  `json:"fulfiller_character,omitempty"`
	ESIMonitorCharacter     *cart.Character  `json:"esi_monitor_character,omitempty"`
	RequestType             cart.RequestType `json:"request_type"`
	RequestTypeLabel        string           `json:"request_type_label"`
	Items                   []cart.Item      `json:"items"`
	TotalItems              int              `json:"total_items"`
	TotalQuantity           int64            `json:"total_quantity"`
	PickupLocation          string           `json:"pickup_location"`
	DeliveryLocation        string           `json:"delivery_location"`
	Description             string           `json:"description"`
	RequesterPrice          *int64           `json:"requester_price,omitempty"`
	RequesterPriceISK       string           `json:"requester_price_isk"`
	RequesterCollateral     int64            `json:"requester_collateral"`
	RequesterCollateralISK  string           `json:"requester_collateral_isk"`
	RequesterExpirationDays int              `json:"requester_expiration_days"`
	MaxBudget               *int64           `json:"max_budget,omitempty"`
	MaxBudgetISK            string           `json:"max_budget_isk"`
	FulfillerPrice          *int64           `json:"fulfiller_price,omitempty"`
	FulfillerPriceISK       string           `json:"fulfiller_price_isk"`
	FulfillerCollateral     *int64           `json:"fulfiller_collateral,omitempty"`
	FulfillerCollateralISK  string           `json:"fulfiller_collateral_isk"`
	FulfillerExpirationDays *int             `json:"fulfiller_expiration_days,omitempty"`
	FulfillerNotes          string           `json:"fulfiller_notes,omitempty"`
	ContractID              *int64           `json:"contract_id,omitempty"`
	ContractIssuer          string           `json:"contract_issuer,omitempty"`
	ContractCreatedAt       *time.Time       `json:"contract_created_at,omitempty"`
	ContractAcceptedAt      *time.Time       `json:"contract_accepted_at,omitempty"`
	ContractCompletedAt     *time.Time       `json:"contract_completed_at,omitempty"`
	ClaimedAt               *time.Time       `json:"claimed_at,omitempty"`
	CancelledAt             *time.Time       `json:"cancelled_at,omitempty"`
	ExpiredAt               *time.Time       `json:"expired_at,omitempty"`
	Status                  cart.Status      `json:"status"`
	StatusLabel             string           `json:"status_label"`
	StatusBadge             string           `json:"status_badge"`
	StatusIcon              string           `json:"status_icon"`
	RequesterRating         *int             `json:"requester_rating,omitempty"`
	Version                 int              `json:"version"`
	CreatedAt               time.Time        `json:"created_at"`
	UpdatedAt               time.Time        `json:"updated_at"`
}

// ToItemRequestResponse converts the domain aggregate to its response
func ToItemRequestResponse(r *cart.ItemRequest) ItemRequestResponse {
	collateral := r.RequesterCollateral
	return ItemRequestResponse{
		ID:                      r.ID,
		Display:                 r.String(),
		UserID:                  r.UserID,
		Username:                r.Username,
		Character:               r.Character,
		FulfillerID:             r.FulfillerID,
		FulfillerUsername:       r.FulfillerUsername,
		FulfillerCharacter:      r.FulfillerCharacter,
		ESIMonitorCharacter:     r.ESIMonitorCharacter,
		RequestType:             r.RequestType,
		RequestTypeLabel:        r.RequestType.Label(),
		Items:                   r.Items,
		TotalItems:              r.TotalItemsCount(),
		TotalQuantity:           r.TotalQuantity(),
		PickupLocation:          r.PickupLocation,
		DeliveryLocation:        r.DeliveryLocation,
		Description:             r.Description,
		RequesterPrice:          r.RequesterPrice,
		RequesterPriceISK:       cart.FormatISK(r.RequesterPrice),
		RequesterCollateral:     r.RequesterCollateral,
		RequesterCollateralISK:  cart.FormatISK(&collateral),
		RequesterExpirationDays: r.RequesterExpirationDays,
		MaxBudget:               r.MaxBudget,
		MaxBudgetISK:            cart.FormatISK(r.MaxBudget),
		FulfillerPrice:          r.FulfillerPrice,
		FulfillerPriceISK:       cart.FormatISK(r.FulfillerPrice),
		FulfillerCollateral:     r.FulfillerCollateral,
		FulfillerCollateralISK:  cart.FormatISK(r.FulfillerCollateral),
		FulfillerExpirationDays: r.FulfillerExpirationDays,
		FulfillerNotes:          r.FulfillerNotes,
		ContractID:              r.ContractID,
		ContractIssuer:          r.ContractIssuer.String(),
		ContractCreatedAt:       r.ContractCreatedAt,
		ContractAcceptedAt:      r.ContractAcceptedAt,
		ContractCompletedAt:     r.ContractCompletedAt,
		ClaimedAt:               r.ClaimedAt,
		CancelledAt:             r.CancelledAt,
		ExpiredAt:               r.ExpiredAt,
		Status:                  r.Status,
		StatusLabel:             r.Status.Label(),
		StatusBadge:             r.Status.BadgeClass(),
		StatusIcon:              r.Status.Icon(),
		RequesterRating:         r.RequesterRating,
		Version:                 r.Version,
		CreatedAt:               r.CreatedAt,
		UpdatedAt:               r.UpdatedAt,
	}
}

// ToItemRequestResponses converts a slice of requests
func ToItemRequestResponses(requests []cart.ItemRequest) []ItemRequestResponse {
	out := make([]ItemRequestResponse, len(requests))
	for i := range requests {
		out[i] = ToItemRequestResponse(&requests[i])
	}
	return out
}

// ActionResult is the outcome of a state-changing operation with its flash message
type ActionResult struct {
	Request ItemRequestResponse `json:"request"`
	Message string              `json:"message"`
}

// RequestList is one page of a player's list
type RequestList struct {
	Items    []ItemRequestResponse `json:"items"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
}

// SummaryResponse backs the index page
type SummaryResponse struct {
	AppName            string `json:"app_name"`
	TotalRequests      int64  `json:"total_requests"`
	ActiveRequests     int64  `json:"active_requests"`
	CompletedRequests  int64  `json:"completed_requests"`
	MarketplaceEnabled bool   `json:"marketplace_enabled"`
	LeaderboardEnabled bool   `json:"leaderboard_enabled"`
}

// FulfillerResponse is a fulfiller's leaderboard statistics
type FulfillerResponse struct {
	Rank           int        `json:"rank,omitempty"`
	UserID         int64      `json:"user_id"`
	Username       string     `json:"username"`
	Display        string     `json:"display"`
	TotalFulfilled int        `json:"total_fulfilled"`
	TotalVolume    int64      `json:"total_volume"`
	LastFulfilled  *time.Time `json:"last_fulfilled,omitempty"`
	Rating         string     `json:"rating"`
	TotalRatings   int        `json:"total_ratings"`
}

// ToFulfillerResponse converts tracking statistics to their response
func ToFulfillerResponse(t *cart.FulfillmentTracking) FulfillerResponse {
	return FulfillerResponse{
		UserID:         t.UserID,
		Username:       t.Username,
		Display:        t.String(),
		TotalFulfilled: t.TotalFulfilled,
		TotalVolume:    t.TotalVolume,
		LastFulfilled:  t.LastFulfilled,
		Rating:         t.Rating.StringFixed(2),
		TotalRatings:   t.TotalRatings,
	}
}

// AdminDashboardResponse holds request counts for managers
type AdminDashboardResponse struct {
	TotalRequests     int64            `json:"total_requests"`
	PendingRequests   int64            `json:"pending_requests"`
	CompletedRequests int64            `json:"completed_requests"`
	ByStatus          map[string]int64 `json:"by_status"`
}

// ParsePreviewResponse shows what the item parser understood
type ParsePreviewResponse struct {
	Items         []cart.Item `json:"items"`
	TotalItems    int         `json:"total_items"`
	TotalQuantity int64       `json:"total_quantity"`
}

// MenuResponse is the portal menu entry
type MenuResponse struct {
	Visible bool   `json:"visible"`
	Label   string `json:"label,omitempty"`
	Icon    string `json:"icon,omitempty"`
	URL     string `json:"url,omitempty"`
}
