package handler

import (
	"errors"
	"net/http"
	"testing"
	"time"

	cartapp "github.com/atthompson13/aa-shoppingcart/internal/application/cart"
	"github.com/atthompson13/aa-shoppingcart/internal/domain/cart"
	"github.com/atthompson13/aa-shoppingcart/internal/domain/shared"
	"github.com/atthompson13/aa-shoppingcart/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func sampleResult(id int64, status cart.Status, msg string) *cartapp.ActionResult {
	return &cartapp.ActionResult{
		Request: cartapp.ItemRequestResponse{ID: id, Status: status, Username: "pilot"},
		Message: msg,
	}
}

func TestCartHandler_Summary(t *testing.T) {
	claims := testClaims(cart.PermBasicAccess)
	svc := new(mockCartService)
	svc.On("Summary", mock.Anything, claims.Actor()).Return(&cartapp.SummaryResponse{
		AppName:            "Shopping Cart",
		TotalRequests:      3,
		ActiveRequests:     1,
		CompletedRequests:  2,
		MarketplaceEnabled: true,
	}, nil)

	w := doJSON(newCartEngine(svc, claims), http.MethodGet, "/api/v1/shopping-cart/", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var got cartapp.SummaryResponse
	resp := decodeData(t, w, &got)
	assert.True(t, resp.Success)
	assert.Equal(t, int64(3), got.TotalRequests)
	assert.True(t, got.MarketplaceEnabled)
	svc.AssertExpectations(t)
}

func TestCartHandler_RequiresActor(t *testing.T) {
	svc := new(mockCartService)
	w := doJSON(newCartEngine(svc, nil), http.MethodGet, "/api/v1/shopping-cart/", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp := decode(t, w)
	assert.Equal(t, dto.ErrCodeUnauthorized, resp.Error.Code)
	svc.AssertNotCalled(t, "Summary", mock.Anything, mock.Anything)
}

func TestCartHandler_MenuHiddenWithoutAccess(t *testing.T) {
	claims := testClaims()
	svc := new(mockCartService)
	svc.On("Menu", claims.Actor()).Return(cartapp.MenuResponse{})

	w := doJSON(newCartEngine(svc, claims), http.MethodGet, "/api/v1/shopping-cart/menu", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var got cartapp.MenuResponse
	decodeData(t, w, &got)
	assert.False(t, got.Visible)
}

func TestCartHandler_Hubs(t *testing.T) {
	svc := new(mockCartService)
	svc.On("Hubs").Return([]cart.TradeHub{{Name: "Jita", Station: "Jita IV - Moon 4 - Caldari Navy Assembly Plant"}})

	w := doJSON(newCartEngine(svc, testClaims(cart.PermBasicAccess)), http.MethodGet, "/api/v1/shopping-cart/hubs", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var got []cart.TradeHub
	decodeData(t, w, &got)
	assert.Len(t, got, 1)
	assert.Equal(t, "Jita", got[0].Name)
}

func TestCartHandler_ParseItems(t *testing.T) {
	svc := new(mockCartService)
	svc.On("ParsePreview", "Tritanium x100").Return(&cartapp.ParsePreviewResponse{
		Items:         []cart.Item{{Name: "Tritanium", Quantity: 100}},
		TotalItems:    1,
		TotalQuantity: 100,
	}, nil)
	r := newCartEngine(svc, testClaims(cart.PermRequestItems))

	t.Run("preview", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/v1/shopping-cart/items/parse", cartapp.ParsePreviewInput{ItemsText: "Tritanium x100"})
		assert.Equal(t, http.StatusOK, w.Code)
		var got cartapp.ParsePreviewResponse
		decodeData(t, w, &got)
		assert.Equal(t, int64(100), got.TotalQuantity)
	})

	t.Run("too long", func(t *testing.T) {
		svc.On("ParsePreview", "huge").Return(nil, cartapp.ErrItemsTextTooLong)
		w := doJSON(r, http.MethodPost, "/api/v1/shopping-cart/items/parse", cartapp.ParsePreviewInput{ItemsText: "huge"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidInput, decode(t, w).Error.Code)
	})
}

func TestCartHandler_CreateRequest(t *testing.T) {
	claims := testClaims(cart.PermBasicAccess, cart.PermRequestItems)
	in := cartapp.CreateRequestInput{
		ItemsText:           "Tritanium x100",
		PickupLocation:      "Jita",
		RequesterCollateral: 1_000_000,
	}

	t.Run("created with flash message", func(t *testing.T) {
		svc := new(mockCartService)
		svc.On("Create", mock.Anything, claims.Actor(), in).
			Return(sampleResult(7, cart.StatusPending, cartapp.MsgRequestCreated), nil)

		w := doJSON(newCartEngine(svc, claims), http.MethodPost, "/api/v1/shopping-cart/requests", in)

		assert.Equal(t, http.StatusCreated, w.Code)
		var got cartapp.ItemRequestResponse
		resp := decodeData(t, w, &got)
		assert.Equal(t, cartapp.MsgRequestCreated, resp.Message)
		assert.Equal(t, int64(7), got.ID)
		svc.AssertExpectations(t)
	})

	t.Run("malformed body", func(t *testing.T) {
		svc := new(mockCartService)
		w := doJSON(newCartEngine(svc, claims), http.MethodPost, "/api/v1/shopping-cart/requests", "{not json")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidJSON, decode(t, w).Error.Code)
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("field rules", func(t *testing.T) {
		svc := new(mockCartService)
		bad := in
		bad.RequesterExpirationDays = 30
		bad.RequestType = "barter"

		w := doJSON(newCartEngine(svc, claims), http.MethodPost, "/api/v1/shopping-cart/requests", bad)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode(t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Len(t, resp.Error.Details, 2)
	})

	t.Run("domain rejection", func(t *testing.T) {
		svc := new(mockCartService)
		svc.On("Create", mock.Anything, claims.Actor(), in).Return(nil, cart.ErrNoMainCharacter)

		w := doJSON(newCartEngine(svc, claims), http.MethodPost, "/api/v1/shopping-cart/requests", in)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.ErrCodeNoMainCharacter, decode(t, w).Error.Code)
	})
}

func TestCartHandler_Lists(t *testing.T) {
	claims := testClaims(cart.PermBasicAccess, cart.PermRequestItems, cart.PermFulfillRequests)
	page := &cartapp.RequestList{
		Items:    []cartapp.ItemRequestResponse{{ID: 1}, {ID: 2}},
		Page:     2,
		PageSize: 25,
	}

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"my requests", "MyRequests", "/api/v1/shopping-cart/my-requests?page=2"},
		{"marketplace", "Marketplace", "/api/v1/shopping-cart/marketplace?page=2"},
		{"my claimed", "MyClaimed", "/api/v1/shopping-cart/my-claimed?page=2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockCartService)
			svc.On(tt.method, mock.Anything, claims.Actor(), cartapp.PageQuery{Page: 2}).Return(page, nil)

			w := doJSON(newCartEngine(svc, claims), http.MethodGet, tt.path, nil)

			assert.Equal(t, http.StatusOK, w.Code)
			var got cartapp.RequestList
			decodeData(t, w, &got)
			assert.Len(t, got.Items, 2)
			assert.Equal(t, 2, got.Page)
			svc.AssertExpectations(t)
		})
	}

	t.Run("invalid page", func(t *testing.T) {
		svc := new(mockCartService)
		w := doJSON(newCartEngine(svc, claims), http.MethodGet, "/api/v1/shopping-cart/my-requests?page=-1", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, decode(t, w).Error.Code)
	})

	t.Run("unparseable page", func(t *testing.T) {
		svc := new(mockCartService)
		w := doJSON(newCartEngine(svc, claims), http.MethodGet, "/api/v1/shopping-cart/my-requests?page=abc", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeBadRequest, decode(t, w).Error.Code)
	})

	t.Run("marketplace disabled reads as missing", func(t *testing.T) {
		svc := new(mockCartService)
		svc.On("Marketplace", mock.Anything, claims.Actor(), cartapp.PageQuery{}).Return(nil, cartapp.ErrMarketplaceDisabled)

		w := doJSON(newCartEngine(svc, claims), http.MethodGet, "/api/v1/shopping-cart/marketplace", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodeFeatureDisabled, decode(t, w).Error.Code)
	})
}

func TestCartHandler_GetRequest(t *testing.T) {
	claims := testClaims(cart.PermBasicAccess)

	t.Run("found", func(t *testing.T) {
		svc := new(mockCartService)
		svc.On("Get", mock.Anything, claims.Actor(), int64(5)).
			Return(&cartapp.ItemRequestResponse{ID: 5, Status: cart.StatusClaimed}, nil)

		w := doJSON(newCartEngine(svc, claims), http.MethodGet, "/api/v1/shopping-cart/requests/5", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var got cartapp.ItemRequestResponse
		decodeData(t, w, &got)
		assert.Equal(t, cart.StatusClaimed, got.Status)
	})

	t.Run("missing", func(t *testing.T) {
		svc := new(mockCartService)
		svc.On("Get", mock.Anything, claims.Actor(), int64(6)).Return(nil, cart.ErrRequestNotFound)

		w := doJSON(newCartEngine(svc, claims), http.MethodGet, "/api/v1/shopping-cart/requests/6", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodeNotFound, decode(t, w).Error.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		svc := new(mockCartService)
		for _, id := range []string{"abc", "0", "-3"} {
			w := doJSON(newCartEngine(svc, claims), http.MethodGet, "/api/v1/shopping-cart/requests/"+id, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code, id)
		}
		svc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCartHandler_Actions(t *testing.T) {
	claims := testClaims(cart.PermBasicAccess, cart.PermFulfillRequests)

	tests := []struct {
		name   string
		method string
		path   string
		status cart.Status
		msg    string
	}{
		{"claim", "Claim", "/api/v1/shopping-cart/requests/9/claim", cart.StatusClaimed, cartapp.MsgRequestClaimed},
		{"cancel", "Cancel", "/api/v1/shopping-cart/requests/9/cancel", cart.StatusCancelled, cartapp.MsgRequestCancelled},
		{"accept", "AcceptContract", "/api/v1/shopping-cart/requests/9/accept", cart.StatusContractAccepted, cartapp.MsgContractAccepted},
		{"complete", "Complete", "/api/v1/shopping-cart/requests/9/complete", cart.StatusCompleted, cartapp.MsgRequestCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockCartService)
			svc.On(tt.method, mock.Anything, claims.Actor(), int64(9)).Return(sampleResult(9, tt.status, tt.msg), nil)

			w := doJSON(newCartEngine(svc, claims), http.MethodPost, tt.path, nil)

			assert.Equal(t, http.StatusOK, w.Code)
			var got cartapp.ItemRequestResponse
			resp := decodeData(t, w, &got)
			assert.Equal(t, tt.msg, resp.Message)
			assert.Equal(t, tt.status, got.Status)
			svc.AssertExpectations(t)
		})
	}

	t.Run("claim lost to another fulfiller", func(t *testing.T) {
		svc := new(mockCartService)
		svc.On("Claim", mock.Anything, claims.Actor(), int64(9)).
			Return(nil, cart.ErrNotClaimable.WithCause(shared.ErrConcurrencyConflict))

		w := doJSON(newCartEngine(svc, claims), http.MethodPost, "/api/v1/shopping-cart/requests/9/claim", nil)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.ErrCodeNotClaimable, decode(t, w).Error.Code)
	})

	t.Run("unexpected failure is hidden", func(t *testing.T) {
		svc := new(mockCartService)
		svc.On("Complete", mock.Anything, claims.Actor(), int64(9)).Return(nil, errors.New("pq: connection reset"))

		w := doJSON(newCartEngine(svc, claims), http.MethodPost, "/api/v1/shopping-cart/requests/9/complete", nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decode(t, w)
		assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
		assert.NotContains(t, resp.Error.Message, "pq")
		assert.NotEmpty(t, resp.Error.RequestID)
	})
}

func TestCartHandler_ContractsAndRating(t *testing.T) {
	claims := testClaims(cart.PermBasicAccess, cart.PermFulfillRequests)

	t.Run("requester contract", func(t *testing.T) {
		svc := new(mockCartService)
		in := cartapp.SubmitContractInput{ContractID: 123456}
		svc.On("SubmitContract", mock.Anything, claims.Actor(), int64(3), in).
			Return(sampleResult(3, cart.StatusContractCreated, cartapp.MsgContractSubmitted), nil)

		w := doJSON(newCartEngine(svc, claims), http.MethodPost, "/api/v1/shopping-cart/requests/3/contract", in)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("contract id taken", func(t *testing.T) {
		svc := new(mockCartService)
		in := cartapp.SubmitContractInput{ContractID: 123456}
		svc.On("SubmitContract", mock.Anything, claims.Actor(), int64(3), in).Return(nil, cart.ErrContractIDTaken)

		w := doJSON(newCartEngine(svc, claims), http.MethodPost, "/api/v1/shopping-cart/requests/3/contract", in)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, dto.ErrCodeContractIDTaken, decode(t, w).Error.Code)
	})

	t.Run("contract id required", func(t *testing.T) {
		svc := new(mockCartService)
		w := doJSON(newCartEngine(svc, claims), http.MethodPost, "/api/v1/shopping-cart/requests/3/contract", map[string]any{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, decode(t, w).Error.Code)
	})

	t.Run("fulfiller contract", func(t *testing.T) {
		svc := new(mockCartService)
		in := cartapp.FulfillerContractInput{ContractID: 77, Price: 5_000_000, Collateral: 10_000_000, ExpirationDays: 7, Notes: "Jita pickup"}
		svc.On("SubmitFulfillerContract", mock.Anything, claims.Actor(), int64(3), in).
			Return(sampleResult(3, cart.StatusContractCreated, cartapp.MsgTermsSubmitted), nil)

		w := doJSON(newCartEngine(svc, claims), http.MethodPost, "/api/v1/shopping-cart/requests/3/fulfiller-contract", in)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, cartapp.MsgTermsSubmitted, decode(t, w).Message)
	})

	t.Run("rate", func(t *testing.T) {
		svc := new(mockCartService)
		in := cartapp.RateInput{Score: 5}
		svc.On("Rate", mock.Anything, claims.Actor(), int64(3), in).
			Return(sampleResult(3, cart.StatusCompleted, cartapp.MsgFulfillerRated), nil)

		w := doJSON(newCartEngine(svc, claims), http.MethodPost, "/api/v1/shopping-cart/requests/3/rate", in)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("score out of range", func(t *testing.T) {
		svc := new(mockCartService)
		w := doJSON(newCartEngine(svc, claims), http.MethodPost, "/api/v1/shopping-cart/requests/3/rate", cartapp.RateInput{Score: 6})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Rate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("already rated", func(t *testing.T) {
		svc := new(mockCartService)
		in := cartapp.RateInput{Score: 4}
		svc.On("Rate", mock.Anything, claims.Actor(), int64(3), in).Return(nil, cart.ErrAlreadyRated)

		w := doJSON(newCartEngine(svc, claims), http.MethodPost, "/api/v1/shopping-cart/requests/3/rate", in)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, dto.ErrCodeAlreadyRated, decode(t, w).Error.Code)
	})
}

func TestCartHandler_Leaderboard(t *testing.T) {
	last := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	t.Run("ranked", func(t *testing.T) {
		svc := new(mockCartService)
		svc.On("Leaderboard", mock.Anything, mock.Anything).Return([]cartapp.FulfillerResponse{
			{Rank: 1, UserID: 8, Username: "hauler", TotalFulfilled: 12, LastFulfilled: &last, Rating: "4.50"},
		}, nil)

		w := doJSON(newCartEngine(svc, testClaims(cart.PermBasicAccess)), http.MethodGet, "/api/v1/shopping-cart/leaderboard", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var got []cartapp.FulfillerResponse
		decodeData(t, w, &got)
		assert.Equal(t, 1, got[0].Rank)
		assert.Equal(t, "4.50", got[0].Rating)
	})

	t.Run("disabled", func(t *testing.T) {
		svc := new(mockCartService)
		svc.On("Leaderboard", mock.Anything, mock.Anything).Return(nil, cartapp.ErrLeaderboardDisabled)

		w := doJSON(newCartEngine(svc, testClaims(cart.PermBasicAccess)), http.MethodGet, "/api/v1/shopping-cart/leaderboard", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCartHandler_Admin(t *testing.T) {
	claims := testClaims(cart.PermBasicAccess, cart.PermManageRequests)

	t.Run("dashboard", func(t *testing.T) {
		svc := new(mockCartService)
		svc.On("AdminDashboard", mock.Anything, claims.Actor()).Return(&cartapp.AdminDashboardResponse{
			TotalRequests:   4,
			PendingRequests: 1,
			ByStatus:        map[string]int64{"pending": 1, "completed": 3},
		}, nil)

		w := doJSON(newCartEngine(svc, claims), http.MethodGet, "/api/v1/shopping-cart/admin", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var got cartapp.AdminDashboardResponse
		decodeData(t, w, &got)
		assert.Equal(t, int64(3), got.ByStatus["completed"])
	})

	t.Run("request list carries meta", func(t *testing.T) {
		svc := new(mockCartService)
		fulfiller := int64(8)
		svc.On("AdminListRequests", mock.Anything, claims.Actor(), mock.MatchedBy(func(f cartapp.AdminRequestFilter) bool {
			return f.Status == "claimed" && f.Page == 2 && f.PageSize == 10 &&
				f.FulfillerID != nil && *f.FulfillerID == fulfiller &&
				f.StartDate != nil && f.StartDate.Day() == 5
		})).Return(&shared.Paginated[cartapp.ItemRequestResponse]{
			Items:    []cartapp.ItemRequestResponse{{ID: 11}},
			Total:    11,
			Page:     2,
			PageSize: 10,
		}, nil)

		w := doJSON(newCartEngine(svc, claims), http.MethodGet,
			"/api/v1/shopping-cart/admin/requests?status=claimed&page=2&page_size=10&fulfiller_id=8&start_date=2025-01-05", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decode(t, w)
		if assert.NotNil(t, resp.Meta) {
			assert.Equal(t, int64(11), resp.Meta.Total)
			assert.Equal(t, 2, resp.Meta.TotalPages)
		}
		svc.AssertExpectations(t)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		svc := new(mockCartService)
		w := doJSON(newCartEngine(svc, claims), http.MethodGet, "/api/v1/shopping-cart/admin/requests?status=lost", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("fulfillers", func(t *testing.T) {
		svc := new(mockCartService)
		svc.On("AdminListFulfillers", mock.Anything, claims.Actor(), cartapp.FulfillerFilter{Search: "haul", OrderDir: "asc"}).
			Return(&shared.Paginated[cartapp.FulfillerResponse]{
				Items:    []cartapp.FulfillerResponse{{UserID: 8, Username: "hauler"}},
				Total:    1,
				Page:     1,
				PageSize: 25,
			}, nil)

		w := doJSON(newCartEngine(svc, claims), http.MethodGet, "/api/v1/shopping-cart/admin/fulfillers?search=haul&order_dir=asc", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("permission denied", func(t *testing.T) {
		svc := new(mockCartService)
		plain := testClaims(cart.PermBasicAccess)
		svc.On("AdminDashboard", mock.Anything, plain.Actor()).Return(nil, cartapp.ErrPermissionDenied)

		w := doJSON(newCartEngine(svc, plain), http.MethodGet, "/api/v1/shopping-cart/admin", nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, dto.ErrCodeForbidden, decode(t, w).Error.Code)
	})
}
