package cart

import "slices"

// Permission codes granted by the portal
const (
	PermBasicAccess     = "shopping_cart.basic_access"
	PermRequestItems    = "shopping_cart.request_items"
	PermFulfillRequests = "shopping_cart.fulfill_requests"
	PermManageRequests  = "shopping_cart.manage_requests"
)

// AllPermissions lists every permission code the service understands
var AllPermissions = []string{
	PermBasicAccess,
	PermRequestItems,
	PermFulfillRequests,
	PermManageRequests,
}

// Character is an EVE Online character known to the portal
type Character struct {
	ID   int64  `json:"character_id"`
	Name string `json:"character_name"`
}

// Actor is the authenticated portal user performing an operation
type Actor struct {
	UserID        int64
	Username      string
	IsSuperuser   bool
	Permissions   []string
	MainCharacter *Character
}

// Has reports whether the actor holds perm. Superusers hold every permission.
func (a Actor) Has(perm string) bool {
	if a.IsSuperuser {
		return true
	}
	return slices.Contains(a.Permissions, perm)
}

// HasAny reports whether the actor holds at least one of perms
func (a Actor) HasAny(perms ...string) bool {
	for _, p := range perms {
		if a.Has(p) {
			return true
		}
	}
	return false
}
