package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	cartapp "github.com/atthompson13/aa-shoppingcart/internal/application/cart"
	"github.com/atthompson13/aa-shoppingcart/internal/domain/cart"
	"github.com/atthompson13/aa-shoppingcart/internal/domain/shared"
	"github.com/atthompson13/aa-shoppingcart/internal/infrastructure/auth"
	"github.com/atthompson13/aa-shoppingcart/internal/interfaces/http/dto"
	"github.com/atthompson13/aa-shoppingcart/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// mockCartService is a testify mock of CartService
type mockCartService struct {
	mock.Mock
}

var _ CartService = (*mockCartService)(nil)

func (m *mockCartService) action(args mock.Arguments) (*cartapp.ActionResult, error) {
	if r := args.Get(0); r != nil {
		return r.(*cartapp.ActionResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCartService) list(args mock.Arguments) (*cartapp.RequestList, error) {
	if r := args.Get(0); r != nil {
		return r.(*cartapp.RequestList), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCartService) Create(ctx context.Context, actor cart.Actor, in cartapp.CreateRequestInput) (*cartapp.ActionResult, error) {
	return m.action(m.Called(ctx, actor, in))
}

func (m *mockCartService) Get(ctx context.Context, actor cart.Actor, id int64) (*cartapp.ItemRequestResponse, error) {
	args := m.Called(ctx, actor, id)
	if r := args.Get(0); r != nil {
		return r.(*cartapp.ItemRequestResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCartService) MyRequests(ctx context.Context, actor cart.Actor, q cartapp.PageQuery) (*cartapp.RequestList, error) {
	return m.list(m.Called(ctx, actor, q))
}

func (m *mockCartService) Marketplace(ctx context.Context, actor cart.Actor, q cartapp.PageQuery) (*cartapp.RequestList, error) {
	return m.list(m.Called(ctx, actor, q))
}

func (m *mockCartService) MyClaimed(ctx context.Context, actor cart.Actor, q cartapp.PageQuery) (*cartapp.RequestList, error) {
	return m.list(m.Called(ctx, actor, q))
}

func (m *mockCartService) Claim(ctx context.Context, actor cart.Actor, id int64) (*cartapp.ActionResult, error) {
	return m.action(m.Called(ctx, actor, id))
}

func (m *mockCartService) Cancel(ctx context.Context, actor cart.Actor, id int64) (*cartapp.ActionResult, error) {
	return m.action(m.Called(ctx, actor, id))
}

func (m *mockCartService) SubmitContract(ctx context.Context, actor cart.Actor, id int64, in cartapp.SubmitContractInput) (*cartapp.ActionResult, error) {
	return m.action(m.Called(ctx, actor, id, in))
}

func (m *mockCartService) SubmitFulfillerContract(ctx context.Context, actor cart.Actor, id int64, in cartapp.FulfillerContractInput) (*cartapp.ActionResult, error) {
	return m.action(m.Called(ctx, actor, id, in))
}

func (m *mockCartService) AcceptContract(ctx context.Context, actor cart.Actor, id int64) (*cartapp.ActionResult, error) {
	return m.action(m.Called(ctx, actor, id))
}

func (m *mockCartService) Complete(ctx context.Context, actor cart.Actor, id int64) (*cartapp.ActionResult, error) {
	return m.action(m.Called(ctx, actor, id))
}

func (m *mockCartService) Rate(ctx context.Context, actor cart.Actor, id int64, in cartapp.RateInput) (*cartapp.ActionResult, error) {
	return m.action(m.Called(ctx, actor, id, in))
}

func (m *mockCartService) Summary(ctx context.Context, actor cart.Actor) (*cartapp.SummaryResponse, error) {
	args := m.Called(ctx, actor)
	if r := args.Get(0); r != nil {
		return r.(*cartapp.SummaryResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCartService) Leaderboard(ctx context.Context, actor cart.Actor) ([]cartapp.FulfillerResponse, error) {
	args := m.Called(ctx, actor)
	if r := args.Get(0); r != nil {
		return r.([]cartapp.FulfillerResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCartService) AdminDashboard(ctx context.Context, actor cart.Actor) (*cartapp.AdminDashboardResponse, error) {
	args := m.Called(ctx, actor)
	if r := args.Get(0); r != nil {
		return r.(*cartapp.AdminDashboardResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCartService) AdminListRequests(ctx context.Context, actor cart.Actor, f cartapp.AdminRequestFilter) (*shared.Paginated[cartapp.ItemRequestResponse], error) {
	args := m.Called(ctx, actor, f)
	if r := args.Get(0); r != nil {
		return r.(*shared.Paginated[cartapp.ItemRequestResponse]), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCartService) AdminListFulfillers(ctx context.Context, actor cart.Actor, f cartapp.FulfillerFilter) (*shared.Paginated[cartapp.FulfillerResponse], error) {
	args := m.Called(ctx, actor, f)
	if r := args.Get(0); r != nil {
		return r.(*shared.Paginated[cartapp.FulfillerResponse]), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCartService) ParsePreview(text string) (*cartapp.ParsePreviewResponse, error) {
	args := m.Called(text)
	if r := args.Get(0); r != nil {
		return r.(*cartapp.ParsePreviewResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCartService) Menu(actor cart.Actor) cartapp.MenuResponse {
	return m.Called(actor).Get(0).(cartapp.MenuResponse)
}

func (m *mockCartService) Hubs() []cart.TradeHub {
	return m.Called().Get(0).([]cart.TradeHub)
}

// testClaims is a requester with a main character
func testClaims(perms ...string) *auth.Claims {
	return &auth.Claims{
		UserID:        42,
		Username:      "pilot",
		Permissions:   perms,
		MainCharacter: &cart.Character{ID: 9001, Name: "Pilot Main"},
	}
}

// withClaims stands in for the JWT middleware
func withClaims(claims *auth.Claims) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims != nil {
			c.Set(middleware.JWTClaimsKey, claims)
		}
		c.Next()
	}
}

// newCartEngine mounts every cart route on an engine authenticated as claims
func newCartEngine(svc CartService, claims *auth.Claims) *gin.Engine {
	h := NewCartHandler(svc)
	r := gin.New()
	r.Use(middleware.RequestID(), withClaims(claims))
	g := r.Group("/api/v1/shopping-cart")
	g.GET("/", h.Summary)
	g.GET("/menu", h.Menu)
	g.GET("/hubs", h.Hubs)
	g.POST("/items/parse", h.ParseItems)
	g.POST("/requests", h.CreateRequest)
	g.GET("/my-requests", h.MyRequests)
	g.GET("/requests/:id", h.GetRequest)
	g.POST("/requests/:id/cancel", h.CancelRequest)
	g.POST("/requests/:id/contract", h.SubmitContract)
	g.POST("/requests/:id/accept", h.AcceptContract)
	g.POST("/requests/:id/complete", h.CompleteRequest)
	g.POST("/requests/:id/rate", h.RateFulfiller)
	g.GET("/marketplace", h.Marketplace)
	g.GET("/my-claimed", h.MyClaimed)
	g.POST("/requests/:id/claim", h.ClaimRequest)
	g.POST("/requests/:id/fulfiller-contract", h.SubmitFulfillerContract)
	g.GET("/leaderboard", h.Leaderboard)
	g.GET("/admin", h.AdminDashboard)
	g.GET("/admin/requests", h.AdminListRequests)
	g.GET("/admin/fulfillers", h.AdminListFulfillers)
	return r
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var req *http.Request
	switch b := body.(type) {
	case nil:
		req = httptest.NewRequest(method, path, nil)
	case string:
		req = httptest.NewRequest(method, path, bytes.NewBufferString(b))
		req.Header.Set("Content-Type", "application/json")
	default:
		raw, _ := json.Marshal(b)
		req = httptest.NewRequest(method, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// decodeData unmarshals the data field of the envelope into out
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) dto.Response {
	t.Helper()
	var env struct {
		dto.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	if out != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return env.Response
}
