package testutil

import "github.com/atthompson13/aa-shoppingcart/internal/domain/cart"

// Requester returns a player who may post item requests
func Requester(id int64) cart.Actor {
	return cart.Actor{
		UserID:        id,
		Username:      "requester",
		Permissions:   []string{cart.PermBasicAccess, cart.PermRequestItems},
		MainCharacter: &cart.Character{ID: 90_000 + id, Name: "Requester Main"},
	}
}

// Fulfiller returns a player who may claim and fulfil requests
func Fulfiller(id int64) cart.Actor {
	return cart.Actor{
		UserID:        id,
		Username:      "hauler",
		Permissions:   []string{cart.PermBasicAccess, cart.PermFulfillRequests},
		MainCharacter: &cart.Character{ID: 70_000 + id, Name: "Hauler Main"},
	}
}

// Manager returns a player holding the admin permission
func Manager(id int64) cart.Actor {
	return cart.Actor{
		UserID:        id,
		Username:      "director",
		Permissions:   []string{cart.PermBasicAccess, cart.PermManageRequests},
		MainCharacter: &cart.Character{ID: 50_000 + id, Name: "Director Main"},
	}
}
