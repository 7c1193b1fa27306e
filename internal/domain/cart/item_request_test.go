package cart

import (
	"errors"
	"testing"
	"time"

	"github.com/atthompson13/aa-shoppingcart/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func int64Ptr(v int64) *int64 { return &v }

func requester() Actor {
	return Actor{
		UserID:        10,
		Username:      "requester",
		Permissions:   []string{PermBasicAccess, PermRequestItems},
		MainCharacter: &Character{ID: 9001, Name: "Req Main"},
	}
}

func fulfiller() Actor {
	return Actor{
		UserID:        20,
		Username:      "hauler",
		Permissions:   []string{PermBasicAccess, PermFulfillRequests},
		MainCharacter: &Character{ID: 9002, Name: "Hauler Main"},
	}
}

func manager() Actor {
	return Actor{UserID: 30, Username: "director", Permissions: []string{PermBasicAccess, PermManageRequests}}
}

func validInput() NewItemRequestInput {
	r := requester()
	return NewItemRequestInput{
		UserID:           r.UserID,
		Username:         r.Username,
		Character:        r.MainCharacter,
		RequestType:      RequestTypeRequesterHasItems,
		Items:            []Item{{Name: "Tritanium", Quantity: 1000}, {Name: "Pyerite", Quantity: 500}},
		PickupLocation:   "Jita IV - Moon 4 - Caldari Navy Assembly Plant",
		DeliveryLocation: "Home staging",
	}
}

func newTestRequest(t *testing.T) *ItemRequest {
	t.Helper()
	req, err := NewItemRequest(validInput(), testNow)
	require.NoError(t, err)
	req.ID = 42
	_ = req.PullDomainEvents()
	return req
}

func claimedRequest(t *testing.T) *ItemRequest {
	t.Helper()
	req := newTestRequest(t)
	f := fulfiller()
	require.NoError(t, req.Claim(f, f.MainCharacter, testNow))
	_ = req.PullDomainEvents()
	return req
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected DomainError, got %v", err)
	assert.Equal(t, code, de.Code)
}

func TestNewItemRequest(t *testing.T) {
	t.Run("applies defaults and raises created event", func(t *testing.T) {
		in := validInput()
		in.RequestType = ""

		req, err := NewItemRequest(in, testNow)

		require.NoError(t, err)
		assert.Equal(t, StatusPending, req.Status)
		assert.Equal(t, RequestTypeRequesterHasItems, req.RequestType)
		assert.Equal(t, DefaultExpirationDays, req.RequesterExpirationDays)
		assert.Equal(t, int64(0), req.RequesterCollateral)
		assert.Equal(t, 1, req.Version)
		assert.Equal(t, testNow, req.CreatedAt)
		require.Len(t, req.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeItemRequestCreated, req.GetDomainEvents()[0].EventType())
	})

	t.Run("rejects missing main character", func(t *testing.T) {
		in := validInput()
		in.Character = nil

		_, err := NewItemRequest(in, testNow)
		assert.ErrorIs(t, err, ErrNoMainCharacter)
	})

	t.Run("rejects empty items", func(t *testing.T) {
		in := validInput()
		in.Items = nil

		_, err := NewItemRequest(in, testNow)
		assertCode(t, err, "NO_ITEMS")
	})

	t.Run("rejects long location", func(t *testing.T) {
		in := validInput()
		in.PickupLocation = string(make([]byte, 256))

		_, err := NewItemRequest(in, testNow)
		assertCode(t, err, "INVALID_LOCATION")
	})

	t.Run("rejects expiration out of range", func(t *testing.T) {
		in := validInput()
		in.RequesterExpirationDays = 15

		_, err := NewItemRequest(in, testNow)
		assertCode(t, err, "INVALID_EXPIRATION")
	})

	t.Run("rejects negative amounts", func(t *testing.T) {
		in := validInput()
		in.RequesterPrice = int64Ptr(-1)

		_, err := NewItemRequest(in, testNow)
		assertCode(t, err, "INVALID_AMOUNT")
	})

	t.Run("budget below price for fulfiller_buys", func(t *testing.T) {
		in := validInput()
		in.RequestType = RequestTypeFulfillerBuys
		in.RequesterPrice = int64Ptr(2000000)
		in.MaxBudget = int64Ptr(1000000)

		_, err := NewItemRequest(in, testNow)
		assert.ErrorIs(t, err, ErrBudgetBelowCost)
	})

	t.Run("budget above price for fulfiller_buys", func(t *testing.T) {
		in := validInput()
		in.RequestType = RequestTypeFulfillerBuys
		in.RequesterPrice = int64Ptr(1000000)
		in.MaxBudget = int64Ptr(2000000)

		_, err := NewItemRequest(in, testNow)
		assert.NoError(t, err)
	})

	t.Run("budget rule ignores requester_has_items", func(t *testing.T) {
		in := validInput()
		in.RequesterPrice = int64Ptr(1000000)
		in.MaxBudget = int64Ptr(500000)

		_, err := NewItemRequest(in, testNow)
		assert.NoError(t, err)
	})
}

func TestItemRequest_CanBeClaimedBy(t *testing.T) {
	req := newTestRequest(t)

	assert.True(t, req.CanBeClaimedBy(fulfiller()))
	assert.False(t, req.CanBeClaimedBy(requester()), "owner cannot claim")
	assert.False(t, req.CanBeClaimedBy(Actor{UserID: 99, Permissions: []string{PermBasicAccess}}), "needs fulfill permission")
	assert.True(t, req.CanBeClaimedBy(Actor{UserID: req.UserID, IsSuperuser: true}), "superuser may claim own request")

	req.Status = StatusCancelled
	assert.False(t, req.CanBeClaimedBy(fulfiller()))
}

func TestItemRequest_Claim(t *testing.T) {
	t.Run("requester has items sets monitor character", func(t *testing.T) {
		req := newTestRequest(t)
		f := fulfiller()
		at := testNow.Add(time.Hour)

		require.NoError(t, req.Claim(f, f.MainCharacter, at))

		assert.Equal(t, StatusClaimed, req.Status)
		require.NotNil(t, req.FulfillerID)
		assert.Equal(t, f.UserID, *req.FulfillerID)
		assert.Equal(t, "hauler", req.FulfillerUsername)
		assert.Equal(t, at, *req.ClaimedAt)
		require.NotNil(t, req.ESIMonitorCharacter)
		assert.Equal(t, int64(9001), req.ESIMonitorCharacter.ID, "requester's character issues the contract")
		assert.Equal(t, int64(9002), req.FulfillerCharacter.ID)
		assert.False(t, req.IsClaimable())
		require.Len(t, req.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeItemRequestClaimed, req.GetDomainEvents()[0].EventType())
	})

	t.Run("fulfiller buys leaves monitor empty", func(t *testing.T) {
		in := validInput()
		in.RequestType = RequestTypeFulfillerBuys
		req, err := NewItemRequest(in, testNow)
		require.NoError(t, err)
		f := fulfiller()

		require.NoError(t, req.Claim(f, f.MainCharacter, testNow))
		assert.Nil(t, req.ESIMonitorCharacter)
	})

	t.Run("second claim fails", func(t *testing.T) {
		req := claimedRequest(t)
		other := fulfiller()
		other.UserID = 21

		err := req.Claim(other, other.MainCharacter, testNow)
		assert.ErrorIs(t, err, ErrNotClaimable)
		assert.Equal(t, int64(20), *req.FulfillerID)
	})

	t.Run("owner cannot claim", func(t *testing.T) {
		req := newTestRequest(t)
		r := requester()
		r.Permissions = append(r.Permissions, PermFulfillRequests)

		assert.ErrorIs(t, req.Claim(r, r.MainCharacter, testNow), ErrNotClaimable)
	})

	t.Run("needs a character", func(t *testing.T) {
		req := newTestRequest(t)

		assert.ErrorIs(t, req.Claim(fulfiller(), nil, testNow), ErrNoMainCharacter)
		assert.Equal(t, StatusPending, req.Status)
	})
}

func TestItemRequest_ContractFlow(t *testing.T) {
	t.Run("requester issued contract accepted by fulfiller", func(t *testing.T) {
		req := claimedRequest(t)

		require.NoError(t, req.SubmitContract(requester(), 123456, testNow))
		assert.Equal(t, StatusContractCreated, req.Status)
		assert.Equal(t, ContractIssuerRequester, req.ContractIssuer)
		assert.Equal(t, int64(123456), *req.ContractID)

		assertCode(t, req.AcceptContract(requester(), testNow), "FORBIDDEN")
		require.NoError(t, req.AcceptContract(fulfiller(), testNow))
		assert.Equal(t, StatusContractAccepted, req.Status)
		assert.NotNil(t, req.ContractAcceptedAt)

		assertCode(t, req.Complete(fulfiller(), testNow), "FORBIDDEN")
		require.NoError(t, req.Complete(requester(), testNow))
		assert.Equal(t, StatusCompleted, req.Status)
		assert.NotNil(t, req.ContractCompletedAt)
	})

	t.Run("fulfiller issued contract records terms", func(t *testing.T) {
		req := claimedRequest(t)

		err := req.SubmitFulfillerContract(fulfiller(), FulfillerTerms{
			ContractID: 777,
			Price:      15000000,
			Notes:      "Delivered to staging",
		}, testNow)
		require.NoError(t, err)

		assert.Equal(t, ContractIssuerFulfiller, req.ContractIssuer)
		assert.Equal(t, int64(15000000), *req.FulfillerPrice)
		assert.Equal(t, int64(0), *req.FulfillerCollateral)
		assert.Equal(t, DefaultExpirationDays, *req.FulfillerExpirationDays)

		assertCode(t, req.AcceptContract(fulfiller(), testNow), "FORBIDDEN")
		require.NoError(t, req.AcceptContract(requester(), testNow))
	})

	t.Run("only the fulfiller submits terms", func(t *testing.T) {
		req := claimedRequest(t)

		err := req.SubmitFulfillerContract(requester(), FulfillerTerms{ContractID: 1}, testNow)
		assertCode(t, err, "FORBIDDEN")
		assert.Nil(t, req.FulfillerPrice)
	})

	t.Run("invalid terms leave request untouched", func(t *testing.T) {
		req := claimedRequest(t)

		err := req.SubmitFulfillerContract(fulfiller(), FulfillerTerms{ContractID: 1, ExpirationDays: 30}, testNow)
		assertCode(t, err, "INVALID_EXPIRATION")
		assert.Equal(t, StatusClaimed, req.Status)
		assert.Nil(t, req.FulfillerPrice)
	})

	t.Run("contract requires claimed status", func(t *testing.T) {
		req := newTestRequest(t)

		assertCode(t, req.SubmitContract(requester(), 1, testNow), "INVALID_STATE")
	})

	t.Run("contract id must be positive", func(t *testing.T) {
		req := claimedRequest(t)

		assertCode(t, req.SetContractCreated(0, ContractIssuerRequester, testNow), "INVALID_CONTRACT_ID")
	})

	t.Run("manager may accept and complete", func(t *testing.T) {
		req := claimedRequest(t)
		require.NoError(t, req.SubmitContract(requester(), 5, testNow))

		require.NoError(t, req.AcceptContract(manager(), testNow))
		require.NoError(t, req.Complete(manager(), testNow))
	})

	t.Run("cannot complete before acceptance", func(t *testing.T) {
		req := claimedRequest(t)

		assertCode(t, req.Complete(requester(), testNow), "INVALID_STATE")
	})
}

func TestItemRequest_Cancel(t *testing.T) {
	t.Run("owner cancels pending", func(t *testing.T) {
		req := newTestRequest(t)

		require.NoError(t, req.Cancel(requester(), testNow))
		assert.Equal(t, StatusCancelled, req.Status)
		assert.NotNil(t, req.CancelledAt)
	})

	t.Run("others cannot cancel", func(t *testing.T) {
		req := newTestRequest(t)

		assertCode(t, req.Cancel(fulfiller(), testNow), "FORBIDDEN")
		assertCode(t, req.Cancel(Actor{UserID: 1, IsSuperuser: true}, testNow), "FORBIDDEN")
	})

	t.Run("cannot cancel once accepted", func(t *testing.T) {
		req := claimedRequest(t)
		require.NoError(t, req.SubmitContract(requester(), 5, testNow))
		require.NoError(t, req.AcceptContract(fulfiller(), testNow))

		assertCode(t, req.Cancel(requester(), testNow), "INVALID_STATE")
	})

	t.Run("cannot cancel twice", func(t *testing.T) {
		req := newTestRequest(t)
		require.NoError(t, req.Cancel(requester(), testNow))

		assertCode(t, req.Cancel(requester(), testNow), "INVALID_STATE")
	})
}

func TestItemRequest_Expire(t *testing.T) {
	req := claimedRequest(t)

	require.NoError(t, req.Expire(testNow))
	assert.Equal(t, StatusExpired, req.Status)
	assertCode(t, req.Expire(testNow), "INVALID_STATE")
}

func TestItemRequest_Rate(t *testing.T) {
	req := claimedRequest(t)
	require.NoError(t, req.SubmitContract(requester(), 5, testNow))
	require.NoError(t, req.AcceptContract(fulfiller(), testNow))

	assertCode(t, req.Rate(requester(), 5, testNow), "INVALID_STATE")

	require.NoError(t, req.Complete(requester(), testNow))
	assertCode(t, req.Rate(fulfiller(), 5, testNow), "FORBIDDEN")
	assertCode(t, req.Rate(requester(), 6, testNow), "INVALID_RATING")
	require.NoError(t, req.Rate(requester(), 4, testNow))
	assert.Equal(t, 4, *req.RequesterRating)
	assertCode(t, req.Rate(requester(), 4, testNow), "ALREADY_RATED")
}

func TestItemRequest_String(t *testing.T) {
	req := newTestRequest(t)
	assert.Equal(t, "#42 - Tritanium x1000, Pyerite x500", req.String())

	req.Items = append(req.Items, Item{Name: "Mexallon", Quantity: 3}, Item{Name: "Isogen", Quantity: 4})
	assert.Equal(t, "#42 - Tritanium x1000, Pyerite x500, Mexallon x3...", req.String())
	assert.Equal(t, 4, req.TotalItemsCount())
	assert.Equal(t, int64(1507), req.TotalQuantity())
}
