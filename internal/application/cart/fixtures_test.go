package cart

import (
	"testing"
	"time"

	"github.com/atthompson13/aa-shoppingcart/internal/domain/cart"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func requester() cart.Actor {
	return cart.Actor{
		UserID:        1,
		Username:      "alice",
		Permissions:   []string{cart.PermBasicAccess, cart.PermRequestItems},
		MainCharacter: &cart.Character{ID: 9001, Name: "Alice Main"},
	}
}

func fulfiller() cart.Actor {
	return cart.Actor{
		UserID:        2,
		Username:      "bob",
		Permissions:   []string{cart.PermBasicAccess, cart.PermFulfillRequests},
		MainCharacter: &cart.Character{ID: 9002, Name: "Bob Main"},
	}
}

func manager() cart.Actor {
	return cart.Actor{
		UserID:      3,
		Username:    "carol",
		Permissions: []string{cart.PermBasicAccess, cart.PermManageRequests},
	}
}

// newPendingRequest builds a saved pending request owned by requester()
func newPendingRequest(t *testing.T, id int64) *cart.ItemRequest {
	t.Helper()
	owner := requester()
	req, err := cart.NewItemRequest(cart.NewItemRequestInput{
		UserID:    owner.UserID,
		Username:  owner.Username,
		Character: owner.MainCharacter,
		Items: []cart.Item{
			{Name: "Tritanium", Quantity: 1000},
			{Name: "Pyerite", Quantity: 500},
		},
		PickupLocation: "Jita IV - Moon 4",
	}, testNow.Add(-time.Hour))
	require.NoError(t, err)
	req.ID = id
	_ = req.PullDomainEvents()
	return req
}

func newClaimedRequest(t *testing.T, id int64) *cart.ItemRequest {
	t.Helper()
	req := newPendingRequest(t, id)
	f := fulfiller()
	require.NoError(t, req.Claim(f, f.MainCharacter, testNow.Add(-30*time.Minute)))
	_ = req.PullDomainEvents()
	return req
}

func newAcceptedRequest(t *testing.T, id int64) *cart.ItemRequest {
	t.Helper()
	req := newClaimedRequest(t, id)
	require.NoError(t, req.SubmitContract(requester(), 555, testNow.Add(-20*time.Minute)))
	require.NoError(t, req.AcceptContract(fulfiller(), testNow.Add(-10*time.Minute)))
	_ = req.PullDomainEvents()
	return req
}
