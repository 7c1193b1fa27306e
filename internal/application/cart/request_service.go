package cart

import (
	"context"
	"errors"
	"strings"

	"github.com/atthompson13/aa-shoppingcart/internal/domain/cart"
	"github.com/atthompson13/aa-shoppingcart/internal/domain/shared"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Flash messages returned with successful operations
const (
	MsgRequestCreated     = "Request created successfully!"
	MsgRequestClaimed     = "Request claimed!"
	MsgRequestCancelled   = "Request cancelled"
	MsgContractSubmitted  = "Contract ID saved"
	MsgTermsSubmitted     = "Contract terms saved"
	MsgContractAccepted   = "Contract accepted"
	MsgRequestCompleted   = "Request completed"
	MsgFulfillerRated     = "Thanks for rating your fulfiller"
	menuLabel             = "Shopping Cart"
	menuIcon              = "fas fa-shopping-cart fa-fw"
	menuURL               = "/shopping-cart/"
	maxPreviewInputLength = 100_000
)

// Errors raised by the use cases
var (
	ErrPermissionDenied    = shared.NewDomainError("FORBIDDEN", "You do not have permission to access this page.")
	ErrMarketplaceDisabled = shared.NewDomainError("FEATURE_DISABLED", "The marketplace is disabled")
	ErrLeaderboardDisabled = shared.NewDomainError("FEATURE_DISABLED", "The leaderboard is disabled")
	ErrItemsTextTooLong    = shared.NewDomainError("INVALID_INPUT", "Pasted item text is too long")
)

// RequestService handles item request use cases
type RequestService struct {
	requests       cart.ItemRequestRepository
	tracking       cart.FulfillmentTrackingRepository
	eventPublisher shared.EventPublisher
	settings       Settings
	clock          clockwork.Clock
	logger         *zap.Logger
}

// RequestServiceOption configures a RequestService
type RequestServiceOption func(*RequestService)

// WithClock sets the clock used to stamp transitions
func WithClock(clock clockwork.Clock) RequestServiceOption {
	return func(s *RequestService) {
		s.clock = clock
	}
}

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) RequestServiceOption {
	return func(s *RequestService) {
		s.logger = logger
	}
}

// NewRequestService creates a new RequestService
func NewRequestService(
	requests cart.ItemRequestRepository,
	tracking cart.FulfillmentTrackingRepository,
	settings Settings,
	opts ...RequestServiceOption,
) *RequestService {
	s := &RequestService{
		requests: requests,
		tracking: tracking,
		settings: settings,
		clock:    clockwork.NewRealClock(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetEventPublisher sets the publisher that receives domain events after each save
func (s *RequestService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Settings returns the active settings
func (s *RequestService) Settings() Settings {
	return s.settings
}

// Create opens a new item request from pasted EVE item text
func (s *RequestService) Create(ctx context.Context, actor cart.Actor, in CreateRequestInput) (*ActionResult, error) {
	if !actor.Has(cart.PermRequestItems) {
		return nil, ErrPermissionDenied
	}
	if actor.MainCharacter == nil {
		return nil, cart.ErrNoMainCharacter
	}
	items, err := parseItemsText(in.ItemsText)
	if err != nil {
		return nil, err
	}

	req, err := cart.NewItemRequest(cart.NewItemRequestInput{
		UserID:                  actor.UserID,
		Username:                actor.Username,
		Character:               actor.MainCharacter,
		RequestType:             cart.RequestType(in.RequestType),
		Items:                   items,
		PickupLocation:          in.PickupLocation,
		DeliveryLocation:        in.DeliveryLocation,
		Description:             in.Description,
		RequesterPrice:          in.RequesterPrice,
		RequesterCollateral:     in.RequesterCollateral,
		RequesterExpirationDays: in.RequesterExpirationDays,
		MaxBudget:               in.MaxBudget,
	}, s.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := s.requests.Save(ctx, req); err != nil {
		return nil, err
	}
	s.publish(ctx, req)

	s.logger.Info("item request created",
		zap.Int64("request_id", req.ID),
		zap.Int64("user_id", actor.UserID),
		zap.Int("item_count", req.TotalItemsCount()),
	)
	return &ActionResult{Request: ToItemRequestResponse(req), Message: MsgRequestCreated}, nil
}

// Get returns a single request
func (s *RequestService) Get(ctx context.Context, actor cart.Actor, id int64) (*ItemRequestResponse, error) {
	if !actor.Has(cart.PermBasicAccess) {
		return nil, ErrPermissionDenied
	}
	req, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToItemRequestResponse(req)
	return &resp, nil
}

// MyRequests lists the actor's own requests, newest first
func (s *RequestService) MyRequests(ctx context.Context, actor cart.Actor, q PageQuery) (*RequestList, error) {
	if !actor.Has(cart.PermRequestItems) {
		return nil, ErrPermissionDenied
	}
	return s.page(q, func(f shared.Filter) ([]cart.ItemRequest, error) {
		return s.requests.FindByUser(ctx, actor.UserID, f)
	})
}

// Marketplace lists requests the actor could claim
func (s *RequestService) Marketplace(ctx context.Context, actor cart.Actor, q PageQuery) (*RequestList, error) {
	if !actor.Has(cart.PermFulfillRequests) {
		return nil, ErrPermissionDenied
	}
	if !s.settings.EnableMarketplace {
		return nil, ErrMarketplaceDisabled
	}
	return s.page(q, func(f shared.Filter) ([]cart.ItemRequest, error) {
		if actor.IsSuperuser {
			return s.requests.FindClaimable(ctx, f)
		}
		return s.requests.FindClaimableForUser(ctx, actor.UserID, f)
	})
}

// MyClaimed lists requests the actor is fulfilling
func (s *RequestService) MyClaimed(ctx context.Context, actor cart.Actor, q PageQuery) (*RequestList, error) {
	if !actor.Has(cart.PermFulfillRequests) {
		return nil, ErrPermissionDenied
	}
	return s.page(q, func(f shared.Filter) ([]cart.ItemRequest, error) {
		return s.requests.FindUserClaims(ctx, actor.UserID, f)
	})
}

func (s *RequestService) page(q PageQuery, fetch func(shared.Filter) ([]cart.ItemRequest, error)) (*RequestList, error) {
	filter := shared.NewPageFilter(q.Page, s.settings.pageSize())

	rows, err := fetch(filter)
	if err != nil {
		return nil, err
	}
	return &RequestList{
		Items:    ToItemRequestResponses(rows),
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// Claim assigns a pending request to the actor
func (s *RequestService) Claim(ctx context.Context, actor cart.Actor, id int64) (*ActionResult, error) {
	if !actor.Has(cart.PermFulfillRequests) {
		return nil, ErrPermissionDenied
	}
	req, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := req.Claim(actor, actor.MainCharacter, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.requests.Save(ctx, req); err != nil {
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			return nil, cart.ErrNotClaimable.WithCause(err)
		}
		return nil, err
	}
	s.publish(ctx, req)

	s.logger.Info("item request claimed",
		zap.Int64("request_id", req.ID),
		zap.Int64("fulfiller_id", actor.UserID),
	)
	return &ActionResult{Request: ToItemRequestResponse(req), Message: MsgRequestClaimed}, nil
}

// Cancel withdraws one of the actor's requests. Other players' requests read as missing.
func (s *RequestService) Cancel(ctx context.Context, actor cart.Actor, id int64) (*ActionResult, error) {
	if !actor.Has(cart.PermBasicAccess) {
		return nil, ErrPermissionDenied
	}
	req, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.IsOwnedBy(actor) {
		return nil, cart.ErrRequestNotFound
	}
	return s.transition(ctx, req, MsgRequestCancelled, func() error {
		return req.Cancel(actor, s.clock.Now())
	})
}

// SubmitContract links a contract issued by the requester
func (s *RequestService) SubmitContract(ctx context.Context, actor cart.Actor, id int64, in SubmitContractInput) (*ActionResult, error) {
	if !actor.Has(cart.PermBasicAccess) {
		return nil, ErrPermissionDenied
	}
	req, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureContractIDFree(ctx, in.ContractID, req.ID); err != nil {
		return nil, err
	}
	return s.transition(ctx, req, MsgContractSubmitted, func() error {
		return req.SubmitContract(actor, in.ContractID, s.clock.Now())
	})
}

// SubmitFulfillerContract records the fulfiller's terms and contract
func (s *RequestService) SubmitFulfillerContract(ctx context.Context, actor cart.Actor, id int64, in FulfillerContractInput) (*ActionResult, error) {
	if !actor.Has(cart.PermFulfillRequests) {
		return nil, ErrPermissionDenied
	}
	req, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureContractIDFree(ctx, in.ContractID, req.ID); err != nil {
		return nil, err
	}
	return s.transition(ctx, req, MsgTermsSubmitted, func() error {
		return req.SubmitFulfillerContract(actor, cart.FulfillerTerms{
			ContractID:     in.ContractID,
			Price:          in.Price,
			Collateral:     in.Collateral,
			ExpirationDays: in.ExpirationDays,
			Notes:          strings.TrimSpace(in.Notes),
		}, s.clock.Now())
	})
}

// AcceptContract marks the contract as accepted in game
func (s *RequestService) AcceptContract(ctx context.Context, actor cart.Actor, id int64) (*ActionResult, error) {
	if !actor.Has(cart.PermBasicAccess) {
		return nil, ErrPermissionDenied
	}
	req, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, req, MsgContractAccepted, func() error {
		return req.AcceptContract(actor, s.clock.Now())
	})
}

// Complete closes the request and credits the fulfiller on the leaderboard
func (s *RequestService) Complete(ctx context.Context, actor cart.Actor, id int64) (*ActionResult, error) {
	if !actor.Has(cart.PermBasicAccess) {
		return nil, ErrPermissionDenied
	}
	req, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	if err := req.Complete(actor, now); err != nil {
		return nil, err
	}

	tracking, err := s.trackingFor(ctx, req)
	if err != nil {
		return nil, err
	}
	if tracking == nil {
		err = s.requests.Save(ctx, req)
	} else {
		tracking.RecordFulfillment(req.TotalQuantity(), now)
		err = s.requests.SaveWithTracking(ctx, req, tracking)
	}
	if err != nil {
		return nil, err
	}
	s.publish(ctx, req)

	return &ActionResult{Request: ToItemRequestResponse(req), Message: MsgRequestCompleted}, nil
}

// Rate scores the fulfiller of a completed request
func (s *RequestService) Rate(ctx context.Context, actor cart.Actor, id int64, in RateInput) (*ActionResult, error) {
	if !actor.Has(cart.PermBasicAccess) {
		return nil, ErrPermissionDenied
	}
	req, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	if err := req.Rate(actor, in.Score, now); err != nil {
		return nil, err
	}

	tracking, err := s.trackingFor(ctx, req)
	if err != nil {
		return nil, err
	}
	if tracking == nil {
		err = s.requests.Save(ctx, req)
	} else {
		if rerr := tracking.AddRating(in.Score, now); rerr != nil {
			return nil, rerr
		}
		err = s.requests.SaveWithTracking(ctx, req, tracking)
	}
	if err != nil {
		return nil, err
	}
	s.publish(ctx, req)

	return &ActionResult{Request: ToItemRequestResponse(req), Message: MsgFulfillerRated}, nil
}

// Summary returns the actor's request counts for the index page
func (s *RequestService) Summary(ctx context.Context, actor cart.Actor) (*SummaryResponse, error) {
	if !actor.Has(cart.PermBasicAccess) {
		return nil, ErrPermissionDenied
	}
	total, err := s.requests.CountByUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	active, err := s.requests.CountActiveByUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	completed, err := s.requests.CountByUserAndStatus(ctx, actor.UserID, cart.StatusCompleted)
	if err != nil {
		return nil, err
	}
	return &SummaryResponse{
		AppName:            s.settings.AppName,
		TotalRequests:      total,
		ActiveRequests:     active,
		CompletedRequests:  completed,
		MarketplaceEnabled: s.settings.EnableMarketplace,
		LeaderboardEnabled: s.settings.EnableLeaderboard,
	}, nil
}

// Leaderboard lists the top fulfillers
func (s *RequestService) Leaderboard(ctx context.Context, actor cart.Actor) ([]FulfillerResponse, error) {
	if !actor.Has(cart.PermBasicAccess) {
		return nil, ErrPermissionDenied
	}
	if !s.settings.EnableLeaderboard {
		return nil, ErrLeaderboardDisabled
	}
	top, err := s.tracking.FindTop(ctx, s.settings.leaderboardSize())
	if err != nil {
		return nil, err
	}
	out := make([]FulfillerResponse, len(top))
	for i := range top {
		out[i] = ToFulfillerResponse(&top[i])
		out[i].Rank = i + 1
	}
	return out, nil
}

// AdminDashboard returns request counts for managers
func (s *RequestService) AdminDashboard(ctx context.Context, actor cart.Actor) (*AdminDashboardResponse, error) {
	if !actor.Has(cart.PermManageRequests) {
		return nil, ErrPermissionDenied
	}
	resp := &AdminDashboardResponse{ByStatus: make(map[string]int64, len(cart.AllStatuses))}
	for _, status := range cart.AllStatuses {
		n, err := s.requests.CountByStatus(ctx, status)
		if err != nil {
			return nil, err
		}
		resp.ByStatus[string(status)] = n
		resp.TotalRequests += n
	}
	resp.PendingRequests = resp.ByStatus[string(cart.StatusPending)]
	resp.CompletedRequests = resp.ByStatus[string(cart.StatusCompleted)]
	return resp, nil
}

// AdminListRequests lists every request matching the filter
func (s *RequestService) AdminListRequests(ctx context.Context, actor cart.Actor, f AdminRequestFilter) (*shared.Paginated[ItemRequestResponse], error) {
	if !actor.Has(cart.PermManageRequests) {
		return nil, ErrPermissionDenied
	}
	filter := f.toFilter(s.settings.pageSize())
	rows, err := s.requests.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.requests.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(ToItemRequestResponses(rows), total, filter.Page, filter.PageSize)
	return &page, nil
}

// AdminListFulfillers lists fulfiller statistics matching the filter
func (s *RequestService) AdminListFulfillers(ctx context.Context, actor cart.Actor, f FulfillerFilter) (*shared.Paginated[FulfillerResponse], error) {
	if !actor.Has(cart.PermManageRequests) {
		return nil, ErrPermissionDenied
	}
	filter := f.toFilter(s.settings.pageSize())
	rows, err := s.tracking.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.tracking.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]FulfillerResponse, len(rows))
	for i := range rows {
		items[i] = ToFulfillerResponse(&rows[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// ParsePreview runs the item parser without saving anything
func (s *RequestService) ParsePreview(text string) (*ParsePreviewResponse, error) {
	items, err := parseItemsText(text)
	if err != nil {
		return nil, err
	}
	resp := &ParsePreviewResponse{Items: items, TotalItems: len(items)}
	for _, it := range items {
		resp.TotalQuantity += it.Quantity
	}
	return resp, nil
}

// Menu returns the portal menu entry, hidden from players without access
func (s *RequestService) Menu(actor cart.Actor) MenuResponse {
	if !actor.Has(cart.PermBasicAccess) {
		return MenuResponse{}
	}
	label := s.settings.AppName
	if label == "" {
		label = menuLabel
	}
	return MenuResponse{Visible: true, Label: label, Icon: menuIcon, URL: menuURL}
}

// Hubs returns the configured default trade hubs
func (s *RequestService) Hubs() []cart.TradeHub {
	return cart.HubsByName(s.settings.DefaultHubs)
}

func (s *RequestService) transition(ctx context.Context, req *cart.ItemRequest, msg string, apply func() error) (*ActionResult, error) {
	if err := apply(); err != nil {
		return nil, err
	}
	if err := s.requests.Save(ctx, req); err != nil {
		return nil, err
	}
	s.publish(ctx, req)
	return &ActionResult{Request: ToItemRequestResponse(req), Message: msg}, nil
}

func (s *RequestService) ensureContractIDFree(ctx context.Context, contractID, requestID int64) error {
	if contractID < 1 {
		return nil
	}
	taken, err := s.requests.ExistsByContractID(ctx, contractID, requestID)
	if err != nil {
		return err
	}
	if taken {
		return cart.ErrContractIDTaken
	}
	return nil
}

// trackingFor loads the fulfiller's statistics, starting them when missing.
// Returns nil when the request has no fulfiller.
func (s *RequestService) trackingFor(ctx context.Context, req *cart.ItemRequest) (*cart.FulfillmentTracking, error) {
	if req.FulfillerID == nil {
		return nil, nil
	}
	tracking, err := s.tracking.FindByUser(ctx, *req.FulfillerID)
	if err == nil {
		return tracking, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	return cart.NewFulfillmentTracking(*req.FulfillerID, req.FulfillerUsername, s.clock.Now())
}

func (s *RequestService) publish(ctx context.Context, req *cart.ItemRequest) {
	events := req.PullDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish item request events",
			zap.Int64("request_id", req.ID),
			zap.Error(err),
		)
	}
}

func parseItemsText(text string) ([]cart.Item, error) {
	if strings.TrimSpace(text) == "" {
		return nil, cart.ErrEmptyItemsText
	}
	if len(text) > maxPreviewInputLength {
		return nil, ErrItemsTextTooLong
	}
	items := cart.ParseItems(text)
	if len(items) == 0 {
		return nil, cart.ErrNoItems
	}
	return items, nil
}
