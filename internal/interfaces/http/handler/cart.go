package handler

import (
	"context"

	cartapp "github.com/atthompson13/aa-shoppingcart/internal/application/cart"
	"github.com/atthompson13/aa-shoppingcart/internal/domain/cart"
	"github.com/atthompson13/aa-shoppingcart/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// CartService is the set of item request use cases served over HTTP
type CartService interface {
	Create(ctx context.Context, actor cart.Actor, in cartapp.CreateRequestInput) (*cartapp.ActionResult, error)
	Get(ctx context.Context, actor cart.Actor, id int64) (*cartapp.ItemRequestResponse, error)
	MyRequests(ctx context.Context, actor cart.Actor, q cartapp.PageQuery) (*cartapp.RequestList, error)
	Marketplace(ctx context.Context, actor cart.Actor, q cartapp.PageQuery) (*cartapp.RequestList, error)
	MyClaimed(ctx context.Context, actor cart.Actor, q cartapp.PageQuery) (*cartapp.RequestList, error)
	Claim(ctx context.Context, actor cart.Actor, id int64) (*cartapp.ActionResult, error)
	Cancel(ctx context.Context, actor cart.Actor, id int64) (*cartapp.ActionResult, error)
	SubmitContract(ctx context.Context, actor cart.Actor, id int64, in cartapp.SubmitContractInput) (*cartapp.ActionResult, error)
	SubmitFulfillerContract(ctx context.Context, actor cart.Actor, id int64, in cartapp.FulfillerContractInput) (*cartapp.ActionResult, error)
	AcceptContract(ctx context.Context, actor cart.Actor, id int64) (*cartapp.ActionResult, error)
	Complete(ctx context.Context, actor cart.Actor, id int64) (*cartapp.ActionResult, error)
	Rate(ctx context.Context, actor cart.Actor, id int64, in cartapp.RateInput) (*cartapp.ActionResult, error)
	Summary(ctx context.Context, actor cart.Actor) (*cartapp.SummaryResponse, error)
	Leaderboard(ctx context.Context, actor cart.Actor) ([]cartapp.FulfillerResponse, error)
	AdminDashboard(ctx context.Context, actor cart.Actor) (*cartapp.AdminDashboardResponse, error)
	AdminListRequests(ctx context.Context, actor cart.Actor, f cartapp.AdminRequestFilter) (*shared.Paginated[cartapp.ItemRequestResponse], error)
	AdminListFulfillers(ctx context.Context, actor cart.Actor, f cartapp.FulfillerFilter) (*shared.Paginated[cartapp.FulfillerResponse], error)
	ParsePreview(text string) (*cartapp.ParsePreviewResponse, error)
	Menu(actor cart.Actor) cartapp.MenuResponse
	Hubs() []cart.TradeHub
}

// CartHandler serves the shopping cart pages as JSON
type CartHandler struct {
	BaseHandler
	service CartService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(service CartService) *CartHandler {
	return &CartHandler{service: service}
}

// actionFunc is a state-changing use case on one request
type actionFunc func(ctx context.Context, actor cart.Actor, id int64) (*cartapp.ActionResult, error)

// runAction answers an action on the :id request with its result and flash message
func (h *CartHandler) runAction(c *gin.Context, action actionFunc) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	result, err := action(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMessage(c, result.Request, result.Message)
}

// listFunc fetches one page of a player's list
type listFunc func(ctx context.Context, actor cart.Actor, q cartapp.PageQuery) (*cartapp.RequestList, error)

func (h *CartHandler) runList(c *gin.Context, list listFunc) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var q cartapp.PageQuery
	if !h.bindQuery(c, &q) {
		return
	}
	result, err := list(c.Request.Context(), actor, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Summary godoc
// @ID           getCartSummary
// @Summary      Shopping cart index
// @Description  Request counts of the caller and the enabled features
// @Tags         shopping-cart
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} APIResponse[cartapp.SummaryResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Router       /shopping-cart/ [get]
func (h *CartHandler) Summary(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	summary, err := h.service.Summary(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Menu godoc
// @ID           getCartMenu
// @Summary      Portal menu entry
// @Description  The menu item for the portal sidebar. Hidden when the caller lacks basic access.
// @Tags         shopping-cart
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} APIResponse[cartapp.MenuResponse]
// @Failure      401 {object} ErrorResponse
// @Router       /shopping-cart/menu [get]
func (h *CartHandler) Menu(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	h.Success(c, h.service.Menu(actor))
}

// Hubs godoc
// @ID           listCartHubs
// @Summary      List trade hubs
// @Description  The configured default trade hubs offered as locations
// @Tags         shopping-cart
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} APIResponse[[]cart.TradeHub]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Router       /shopping-cart/hubs [get]
func (h *CartHandler) Hubs(c *gin.Context) {
	h.Success(c, h.service.Hubs())
}

// ParseItems godoc
// @ID           parseCartItems
// @Summary      Preview pasted items
// @Description  Runs the EVE item parser on pasted text without saving anything
// @Tags         shopping-cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body cartapp.ParsePreviewInput true "Pasted item text"
// @Success      200 {object} APIResponse[cartapp.ParsePreviewResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Router       /shopping-cart/items/parse [post]
func (h *CartHandler) ParseItems(c *gin.Context) {
	var in cartapp.ParsePreviewInput
	if !h.bindJSON(c, &in) {
		return
	}
	preview, err := h.service.ParsePreview(in.ItemsText)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, preview)
}

// CreateRequest godoc
// @ID           createCartRequest
// @Summary      Create item request
// @Description  Opens a new request from pasted EVE item text
// @Tags         shopping-cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body cartapp.CreateRequestInput true "Request details"
// @Success      201 {object} APIResponse[cartapp.ItemRequestResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /shopping-cart/requests [post]
func (h *CartHandler) CreateRequest(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var in cartapp.CreateRequestInput
	if !h.bindJSON(c, &in) {
		return
	}
	result, err := h.service.Create(c.Request.Context(), actor, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result.Request, result.Message)
}

// MyRequests godoc
// @ID           listMyCartRequests
// @Summary      List my requests
// @Description  The caller's own requests, newest first
// @Tags         shopping-cart
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "Page number" minimum(1)
// @Success      200 {object} APIResponse[cartapp.RequestList]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Router       /shopping-cart/my-requests [get]
func (h *CartHandler) MyRequests(c *gin.Context) {
	h.runList(c, h.service.MyRequests)
}

// GetRequest godoc
// @ID           getCartRequest
// @Summary      Get item request
// @Tags         shopping-cart
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Request ID"
// @Success      200 {object} APIResponse[cartapp.ItemRequestResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /shopping-cart/requests/{id} [get]
func (h *CartHandler) GetRequest(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	req, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, req)
}

// CancelRequest godoc
// @ID           cancelCartRequest
// @Summary      Cancel item request
// @Description  Withdraws one of the caller's open requests
// @Tags         shopping-cart
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Request ID"
// @Success      200 {object} APIResponse[cartapp.ItemRequestResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /shopping-cart/requests/{id}/cancel [post]
func (h *CartHandler) CancelRequest(c *gin.Context) {
	h.runAction(c, h.service.Cancel)
}

// SubmitContract godoc
// @ID           submitCartContract
// @Summary      Submit requester contract
// @Description  Links the in-game contract the requester issued to the fulfiller
// @Tags         shopping-cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Request ID"
// @Param        request body cartapp.SubmitContractInput true "Contract"
// @Success      200 {object} APIResponse[cartapp.ItemRequestResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /shopping-cart/requests/{id}/contract [post]
func (h *CartHandler) SubmitContract(c *gin.Context) {
	var in cartapp.SubmitContractInput
	if !h.bindJSON(c, &in) {
		return
	}
	h.runAction(c, func(ctx context.Context, actor cart.Actor, id int64) (*cartapp.ActionResult, error) {
		return h.service.SubmitContract(ctx, actor, id, in)
	})
}

// AcceptContract godoc
// @ID           acceptCartContract
// @Summary      Accept contract
// @Description  Marks the linked contract as accepted in game
// @Tags         shopping-cart
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Request ID"
// @Success      200 {object} APIResponse[cartapp.ItemRequestResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /shopping-cart/requests/{id}/accept [post]
func (h *CartHandler) AcceptContract(c *gin.Context) {
	h.runAction(c, h.service.AcceptContract)
}

// CompleteRequest godoc
// @ID           completeCartRequest
// @Summary      Complete item request
// @Description  Closes the request and credits the fulfiller on the leaderboard
// @Tags         shopping-cart
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Request ID"
// @Success      200 {object} APIResponse[cartapp.ItemRequestResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /shopping-cart/requests/{id}/complete [post]
func (h *CartHandler) CompleteRequest(c *gin.Context) {
	h.runAction(c, h.service.Complete)
}

// RateFulfiller godoc
// @ID           rateCartFulfiller
// @Summary      Rate fulfiller
// @Description  Scores the fulfiller of a completed request from 1 to 5. Each request can be rated once.
// @Tags         shopping-cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Request ID"
// @Param        request body cartapp.RateInput true "Score"
// @Success      200 {object} APIResponse[cartapp.ItemRequestResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /shopping-cart/requests/{id}/rate [post]
func (h *CartHandler) RateFulfiller(c *gin.Context) {
	var in cartapp.RateInput
	if !h.bindJSON(c, &in) {
		return
	}
	h.runAction(c, func(ctx context.Context, actor cart.Actor, id int64) (*cartapp.ActionResult, error) {
		return h.service.Rate(ctx, actor, id, in)
	})
}

// Marketplace godoc
// @ID           listCartMarketplace
// @Summary      Marketplace
// @Description  Pending requests the caller could claim
// @Tags         shopping-cart
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "Page number" minimum(1)
// @Success      200 {object} APIResponse[cartapp.RequestList]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /shopping-cart/marketplace [get]
func (h *CartHandler) Marketplace(c *gin.Context) {
	h.runList(c, h.service.Marketplace)
}

// MyClaimed godoc
// @ID           listMyCartClaims
// @Summary      List my claimed requests
// @Tags         shopping-cart
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "Page number" minimum(1)
// @Success      200 {object} APIResponse[cartapp.RequestList]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Router       /shopping-cart/my-claimed [get]
func (h *CartHandler) MyClaimed(c *gin.Context) {
	h.runList(c, h.service.MyClaimed)
}

// ClaimRequest godoc
// @ID           claimCartRequest
// @Summary      Claim item request
// @Description  Assigns a pending request to the caller as fulfiller
// @Tags         shopping-cart
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Request ID"
// @Success      200 {object} APIResponse[cartapp.ItemRequestResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /shopping-cart/requests/{id}/claim [post]
func (h *CartHandler) ClaimRequest(c *gin.Context) {
	h.runAction(c, h.service.Claim)
}

// SubmitFulfillerContract godoc
// @ID           submitCartFulfillerContract
// @Summary      Submit fulfiller contract
// @Description  Records the fulfiller's price, collateral and the contract they issued
// @Tags         shopping-cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Request ID"
// @Param        request body cartapp.FulfillerContractInput true "Contract terms"
// @Success      200 {object} APIResponse[cartapp.ItemRequestResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /shopping-cart/requests/{id}/fulfiller-contract [post]
func (h *CartHandler) SubmitFulfillerContract(c *gin.Context) {
	var in cartapp.FulfillerContractInput
	if !h.bindJSON(c, &in) {
		return
	}
	h.runAction(c, func(ctx context.Context, actor cart.Actor, id int64) (*cartapp.ActionResult, error) {
		return h.service.SubmitFulfillerContract(ctx, actor, id, in)
	})
}

// Leaderboard godoc
// @ID           getCartLeaderboard
// @Summary      Fulfiller leaderboard
// @Description  Top fulfillers ranked by completed requests
// @Tags         shopping-cart
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} APIResponse[[]cartapp.FulfillerResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /shopping-cart/leaderboard [get]
func (h *CartHandler) Leaderboard(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	board, err := h.service.Leaderboard(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, board)
}

// AdminDashboard godoc
// @ID           getCartAdminDashboard
// @Summary      Admin dashboard
// @Description  Request counts by status
// @Tags         shopping-cart-admin
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} APIResponse[cartapp.AdminDashboardResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Router       /shopping-cart/admin [get]
func (h *CartHandler) AdminDashboard(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	dashboard, err := h.service.AdminDashboard(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dashboard)
}

// AdminListRequests godoc
// @ID           listCartAdminRequests
// @Summary      Admin request list
// @Description  Every request, filtered and paginated
// @Tags         shopping-cart-admin
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "Page number" minimum(1)
// @Param        page_size query int false "Page size" minimum(1) maximum(100)
// @Param        search query string false "Matches items, locations and usernames"
// @Param        status query string false "Status" Enums(pending, claimed, contract_created, contract_accepted, completed, cancelled, expired)
// @Param        request_type query string false "Request type" Enums(requester_has_items, fulfiller_buys)
// @Param        user_id query int false "Requester user ID"
// @Param        fulfiller_id query int false "Fulfiller user ID"
// @Param        start_date query string false "Created on or after (YYYY-MM-DD)"
// @Param        end_date query string false "Created on or before (YYYY-MM-DD)"
// @Param        order_by query string false "Sort field" default(created_at)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc) default(desc)
// @Success      200 {object} APIResponse[[]cartapp.ItemRequestResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Router       /shopping-cart/admin/requests [get]
func (h *CartHandler) AdminListRequests(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var f cartapp.AdminRequestFilter
	if !h.bindQuery(c, &f) {
		return
	}
	page, err := h.service.AdminListRequests(c.Request.Context(), actor, f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// AdminListFulfillers godoc
// @ID           listCartAdminFulfillers
// @Summary      Admin fulfiller list
// @Description  Fulfiller statistics, filtered and paginated
// @Tags         shopping-cart-admin
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "Page number" minimum(1)
// @Param        page_size query int false "Page size" minimum(1) maximum(100)
// @Param        search query string false "Matches usernames"
// @Param        order_by query string false "Sort field" default(total_fulfilled)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc) default(desc)
// @Success      200 {object} APIResponse[[]cartapp.FulfillerResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Router       /shopping-cart/admin/fulfillers [get]
func (h *CartHandler) AdminListFulfillers(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var f cartapp.FulfillerFilter
	if !h.bindQuery(c, &f) {
		return
	}
	page, err := h.service.AdminListFulfillers(c.Request.Context(), actor, f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
