package cart

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/atthompson13/aa-shoppingcart/internal/domain/shared"
)

// AggregateTypeItemRequest is the aggregate type name used in events
const AggregateTypeItemRequest = "ItemRequest"

const (
	MaxLocationLength      = 255
	DefaultExpirationDays  = 7
	MinExpirationDays      = 1
	MaxExpirationDays      = 14
	MinRating              = 1
	MaxRating              = 5
	summaryItemsInToString = 3
)

// Domain errors raised by ItemRequest
var (
	ErrRequestNotFound = shared.NewDomainError("NOT_FOUND", "Item request not found")
	ErrNotClaimable    = shared.NewDomainError("NOT_CLAIMABLE", "This request cannot be claimed by this user")
	ErrNoMainCharacter = shared.NewDomainError("NO_MAIN_CHARACTER", "You need to set a main character first")
	ErrNoItems         = shared.NewDomainError("NO_ITEMS", "Could not parse any items")
	ErrEmptyItemsText  = shared.NewDomainError("NO_ITEMS", "Please paste items from EVE")
	ErrBudgetBelowCost = shared.NewDomainError("BUDGET_BELOW_PRICE", "Maximum budget cannot be less than the offered price")
	ErrContractIDTaken = shared.NewDomainError("CONTRACT_ID_TAKEN", "This contract ID is already linked to another request")
	ErrAlreadyRated    = shared.NewDomainError("ALREADY_RATED", "This request has already been rated")
)

// ItemRequest is a player's request for items, fulfilled by another player
// through an in-game contract.
type ItemRequest struct {
	shared.BaseAggregateRoot

	// Requester
	UserID    int64
	Username  string
	Character Character

	// Fulfiller, set on claim
	FulfillerID         *int64
	FulfillerUsername   string
	FulfillerCharacter  *Character
	ESIMonitorCharacter *Character

	RequestType      RequestType
	Items            []Item
	PickupLocation   string
	DeliveryLocation string
	Description      string

	// Requester terms
	RequesterPrice          *int64
	RequesterCollateral     int64
	RequesterExpirationDays int
	MaxBudget               *int64

	// Fulfiller terms
	FulfillerPrice          *int64
	FulfillerCollateral     *int64
	FulfillerExpirationDays *int
	FulfillerNotes          string

	// Contract
	ContractID          *int64
	ContractIssuer      ContractIssuer
	ContractCreatedAt   *time.Time
	ContractAcceptedAt  *time.Time
	ContractCompletedAt *time.Time

	ClaimedAt       *time.Time
	CancelledAt     *time.Time
	ExpiredAt       *time.Time
	Status          Status
	RequesterRating *int
}

// NewItemRequestInput carries everything needed to open a request
type NewItemRequestInput struct {
	UserID                  int64
	Username                string
	Character               *Character
	RequestType             RequestType
	Items                   []Item
	PickupLocation          string
	DeliveryLocation        string
	Description             string
	RequesterPrice          *int64
	RequesterCollateral     int64
	RequesterExpirationDays int
	MaxBudget               *int64
}

// NewItemRequest validates the input and creates a pending request
func NewItemRequest(in NewItemRequestInput, now time.Time) (*ItemRequest, error) {
	if in.UserID <= 0 {
		return nil, shared.NewDomainError("INVALID_USER", "Requester is required")
	}
	if in.Character == nil || in.Character.ID <= 0 {
		return nil, ErrNoMainCharacter
	}
	if in.RequestType == "" {
		in.RequestType = RequestTypeRequesterHasItems
	}
	if !in.RequestType.IsValid() {
		return nil, shared.NewDomainError("INVALID_REQUEST_TYPE", fmt.Sprintf("Unknown request type: %s", in.RequestType))
	}
	if len(in.Items) == 0 {
		return nil, ErrNoItems
	}
	for _, it := range in.Items {
		if !it.IsValid() {
			return nil, shared.NewDomainError("INVALID_ITEM", "Each item needs a name and a positive quantity")
		}
	}
	if err := validateLocation("Pickup location", in.PickupLocation); err != nil {
		return nil, err
	}
	if err := validateLocation("Delivery location", in.DeliveryLocation); err != nil {
		return nil, err
	}
	if err := validateAmount("Price", in.RequesterPrice); err != nil {
		return nil, err
	}
	if err := validateAmount("Maximum budget", in.MaxBudget); err != nil {
		return nil, err
	}
	if in.RequesterCollateral < 0 {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Collateral cannot be negative")
	}
	if in.RequesterExpirationDays == 0 {
		in.RequesterExpirationDays = DefaultExpirationDays
	}
	if err := validateExpirationDays(in.RequesterExpirationDays); err != nil {
		return nil, err
	}
	if in.RequestType == RequestTypeFulfillerBuys && in.MaxBudget != nil && in.RequesterPrice != nil &&
		*in.MaxBudget < *in.RequesterPrice {
		return nil, ErrBudgetBelowCost
	}

	items := make([]Item, len(in.Items))
	copy(items, in.Items)

	r := &ItemRequest{
		BaseAggregateRoot:       shared.NewBaseAggregateRoot(now),
		UserID:                  in.UserID,
		Username:                in.Username,
		Character:               *in.Character,
		RequestType:             in.RequestType,
		Items:                   items,
		PickupLocation:          strings.TrimSpace(in.PickupLocation),
		DeliveryLocation:        strings.TrimSpace(in.DeliveryLocation),
		Description:             in.Description,
		RequesterPrice:          in.RequesterPrice,
		RequesterCollateral:     in.RequesterCollateral,
		RequesterExpirationDays: in.RequesterExpirationDays,
		MaxBudget:               in.MaxBudget,
		Status:                  StatusPending,
	}

	r.AddDomainEvent(NewItemRequestCreatedEvent(r))
	return r, nil
}

func validateLocation(field, value string) error {
	if utf8.RuneCountInString(value) > MaxLocationLength {
		return shared.NewDomainError("INVALID_LOCATION", fmt.Sprintf("%s must be at most %d characters", field, MaxLocationLength))
	}
	return nil
}

func validateAmount(field string, value *int64) error {
	if value != nil && *value < 0 {
		return shared.NewDomainError("INVALID_AMOUNT", fmt.Sprintf("%s cannot be negative", field))
	}
	return nil
}

func validateExpirationDays(days int) error {
	if days < MinExpirationDays || days > MaxExpirationDays {
		return shared.NewDomainError("INVALID_EXPIRATION",
			fmt.Sprintf("Expiration must be between %d and %d days", MinExpirationDays, MaxExpirationDays))
	}
	return nil
}

// IsOwnedBy reports whether the actor created the request
func (r *ItemRequest) IsOwnedBy(actor Actor) bool {
	return r.UserID == actor.UserID
}

// IsFulfilledBy reports whether the actor claimed the request
func (r *ItemRequest) IsFulfilledBy(actor Actor) bool {
	return r.FulfillerID != nil && *r.FulfillerID == actor.UserID
}

// IsClaimable reports whether the request is waiting for a fulfiller
func (r *ItemRequest) IsClaimable() bool {
	return r.Status == StatusPending && r.FulfillerID == nil
}

// CanBeClaimedBy reports whether actor may claim the request.
// Superusers may claim any claimable request, including their own.
func (r *ItemRequest) CanBeClaimedBy(actor Actor) bool {
	if !r.IsClaimable() {
		return false
	}
	if actor.IsSuperuser {
		return true
	}
	if !actor.Has(PermFulfillRequests) {
		return false
	}
	if r.IsOwnedBy(actor) {
		return false
	}
	return true
}

// Claim assigns the request to actor, who fulfils it with character
func (r *ItemRequest) Claim(actor Actor, character *Character, at time.Time) error {
	if !r.CanBeClaimedBy(actor) {
		return ErrNotClaimable
	}
	if character == nil || character.ID <= 0 {
		return ErrNoMainCharacter
	}
	if err := r.transition(StatusClaimed); err != nil {
		return err
	}

	fulfillerID := actor.UserID
	ch := *character
	r.FulfillerID = &fulfillerID
	r.FulfillerUsername = actor.Username
	r.FulfillerCharacter = &ch
	r.ClaimedAt = &at
	if r.RequestType == RequestTypeRequesterHasItems {
		// the requester issues the contract, so their character is watched
		monitor := r.Character
		r.ESIMonitorCharacter = &monitor
	}
	r.Touch(at)

	r.AddDomainEvent(NewItemRequestClaimedEvent(r))
	return nil
}

// SetContractCreated records the in-game contract that delivers the items
func (r *ItemRequest) SetContractCreated(contractID int64, issuer ContractIssuer, at time.Time) error {
	if contractID < 1 {
		return shared.NewDomainError("INVALID_CONTRACT_ID", "Contract ID must be a positive number")
	}
	if !issuer.IsValid() {
		return shared.NewDomainError("INVALID_CONTRACT_ISSUER", fmt.Sprintf("Unknown contract issuer: %s", issuer))
	}
	if err := r.transition(StatusContractCreated); err != nil {
		return err
	}

	r.ContractID = &contractID
	r.ContractIssuer = issuer
	r.ContractCreatedAt = &at
	r.Touch(at)

	r.AddDomainEvent(NewContractCreatedEvent(r))
	return nil
}

// SubmitContract records a contract issued by the requester
func (r *ItemRequest) SubmitContract(actor Actor, contractID int64, at time.Time) error {
	if !r.IsOwnedBy(actor) && !actor.IsSuperuser {
		return shared.NewDomainError("FORBIDDEN", "Only the requester can submit this contract")
	}
	return r.SetContractCreated(contractID, ContractIssuerRequester, at)
}

// FulfillerTerms are the terms of a contract issued by the fulfiller
type FulfillerTerms struct {
	ContractID     int64
	Price          int64
	Collateral     int64
	ExpirationDays int
	Notes          string
}

// SubmitFulfillerContract records the fulfiller's terms and the contract they issued
func (r *ItemRequest) SubmitFulfillerContract(actor Actor, terms FulfillerTerms, at time.Time) error {
	if !r.IsFulfilledBy(actor) && !actor.IsSuperuser {
		return shared.NewDomainError("FORBIDDEN", "Only the fulfiller can submit contract terms")
	}
	if !r.Status.CanTransitionTo(StatusContractCreated) {
		return r.invalidTransition(StatusContractCreated)
	}
	if terms.Price < 0 {
		return shared.NewDomainError("INVALID_AMOUNT", "Price cannot be negative")
	}
	if terms.Collateral < 0 {
		return shared.NewDomainError("INVALID_AMOUNT", "Collateral cannot be negative")
	}
	if terms.ExpirationDays == 0 {
		terms.ExpirationDays = DefaultExpirationDays
	}
	if err := validateExpirationDays(terms.ExpirationDays); err != nil {
		return err
	}
	if terms.ContractID < 1 {
		return shared.NewDomainError("INVALID_CONTRACT_ID", "Contract ID must be a positive number")
	}

	price, collateral, days := terms.Price, terms.Collateral, terms.ExpirationDays
	r.FulfillerPrice = &price
	r.FulfillerCollateral = &collateral
	r.FulfillerExpirationDays = &days
	r.FulfillerNotes = terms.Notes

	return r.SetContractCreated(terms.ContractID, ContractIssuerFulfiller, at)
}

// AcceptContract marks the contract as accepted in game. The party that did
// not issue the contract accepts it; managers may act for either side.
func (r *ItemRequest) AcceptContract(actor Actor, at time.Time) error {
	allowed := actor.Has(PermManageRequests)
	switch r.ContractIssuer {
	case ContractIssuerRequester:
		allowed = allowed || r.IsFulfilledBy(actor)
	case ContractIssuerFulfiller:
		allowed = allowed || r.IsOwnedBy(actor)
	}
	if !allowed {
		return shared.NewDomainError("FORBIDDEN", "Only the receiving party can accept this contract")
	}
	if err := r.transition(StatusContractAccepted); err != nil {
		return err
	}

	r.ContractAcceptedAt = &at
	r.Touch(at)

	r.AddDomainEvent(NewContractAcceptedEvent(r))
	return nil
}

// Complete closes the request once the contract has been accepted
func (r *ItemRequest) Complete(actor Actor, at time.Time) error {
	if !r.IsOwnedBy(actor) && !actor.Has(PermManageRequests) {
		return shared.NewDomainError("FORBIDDEN", "Only the requester can complete this request")
	}
	if err := r.transition(StatusCompleted); err != nil {
		return err
	}

	r.ContractCompletedAt = &at
	r.Touch(at)

	r.AddDomainEvent(NewItemRequestCompletedEvent(r))
	return nil
}

// Cancel withdraws the request. Only the requester may cancel.
func (r *ItemRequest) Cancel(actor Actor, at time.Time) error {
	if !r.IsOwnedBy(actor) {
		return shared.NewDomainError("FORBIDDEN", "Only the requester can cancel this request")
	}
	if err := r.transition(StatusCancelled); err != nil {
		return err
	}

	r.CancelledAt = &at
	r.Touch(at)

	r.AddDomainEvent(NewItemRequestCancelledEvent(r))
	return nil
}

// Expire closes an abandoned request
func (r *ItemRequest) Expire(at time.Time) error {
	if err := r.transition(StatusExpired); err != nil {
		return err
	}

	r.ExpiredAt = &at
	r.Touch(at)

	r.AddDomainEvent(NewItemRequestExpiredEvent(r))
	return nil
}

// Rate lets the requester score the fulfiller once the request is completed
func (r *ItemRequest) Rate(actor Actor, score int, at time.Time) error {
	if !r.IsOwnedBy(actor) {
		return shared.NewDomainError("FORBIDDEN", "Only the requester can rate this request")
	}
	if r.Status != StatusCompleted {
		return shared.NewDomainError("INVALID_STATE", "Only completed requests can be rated")
	}
	if r.RequesterRating != nil {
		return ErrAlreadyRated
	}
	if score < MinRating || score > MaxRating {
		return shared.NewDomainError("INVALID_RATING",
			fmt.Sprintf("Rating must be between %d and %d", MinRating, MaxRating))
	}

	r.RequesterRating = &score
	r.Touch(at)

	r.AddDomainEvent(NewFulfillerRatedEvent(r, score))
	return nil
}

func (r *ItemRequest) transition(target Status) error {
	if !r.Status.CanTransitionTo(target) {
		return r.invalidTransition(target)
	}
	r.Status = target
	return nil
}

func (r *ItemRequest) invalidTransition(target Status) error {
	return shared.NewDomainError("INVALID_STATE",
		fmt.Sprintf("Cannot move request from %s to %s", r.Status, target))
}

// TotalItemsCount returns the number of distinct item lines
func (r *ItemRequest) TotalItemsCount() int {
	return len(r.Items)
}

// TotalQuantity returns the sum of all item quantities
func (r *ItemRequest) TotalQuantity() int64 {
	var total int64
	for _, it := range r.Items {
		total = addQuantity(total, it.Quantity)
	}
	return total
}

// String renders "#12 - Tritanium x1000, Pyerite x500" with at most three items
func (r *ItemRequest) String() string {
	n := len(r.Items)
	if n > summaryItemsInToString {
		n = summaryItemsInToString
	}
	parts := make([]string, 0, n)
	for _, it := range r.Items[:n] {
		parts = append(parts, fmt.Sprintf("%s x%d", it.Name, it.Quantity))
	}
	summary := strings.Join(parts, ", ")
	if len(r.Items) > summaryItemsInToString {
		summary += "..."
	}
	return fmt.Sprintf("#%d - %s", r.ID, summary)
}
