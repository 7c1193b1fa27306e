package cart

import (
	"github.com/atthompson13/aa-shoppingcart/internal/domain/shared"
)

// Event type constants
const (
	EventTypeItemRequestCreated   = "ItemRequestCreated"
	EventTypeItemRequestClaimed   = "ItemRequestClaimed"
	EventTypeContractCreated      = "ContractCreated"
	EventTypeContractAccepted     = "ContractAccepted"
	EventTypeItemRequestCompleted = "ItemRequestCompleted"
	EventTypeItemRequestCancelled = "ItemRequestCancelled"
	EventTypeItemRequestExpired   = "ItemRequestExpired"
	EventTypeFulfillerRated       = "FulfillerRated"
)

// ItemRequestCreatedEvent is raised when a player opens a new request
type ItemRequestCreatedEvent struct {
	shared.BaseDomainEvent
	UserID        int64       `json:"user_id"`
	Username      string      `json:"username"`
	RequestType   RequestType `json:"request_type"`
	ItemCount     int         `json:"item_count"`
	TotalQuantity int64       `json:"total_quantity"`
}

// NewItemRequestCreatedEvent creates a new ItemRequestCreatedEvent
func NewItemRequestCreatedEvent(r *ItemRequest) *ItemRequestCreatedEvent {
	return &ItemRequestCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemRequestCreated, AggregateTypeItemRequest, r.ID, r.CreatedAt),
		UserID:          r.UserID,
		Username:        r.Username,
		RequestType:     r.RequestType,
		ItemCount:       r.TotalItemsCount(),
		TotalQuantity:   r.TotalQuantity(),
	}
}

// EventType returns the event type name
func (e *ItemRequestCreatedEvent) EventType() string {
	return EventTypeItemRequestCreated
}

// ItemRequestClaimedEvent is raised when a fulfiller claims a request
type ItemRequestClaimedEvent struct {
	shared.BaseDomainEvent
	UserID            int64     `json:"user_id"`
	FulfillerID       int64     `json:"fulfiller_id"`
	FulfillerUsername string    `json:"fulfiller_username"`
	Character         Character `json:"character"`
}

// NewItemRequestClaimedEvent creates a new ItemRequestClaimedEvent
func NewItemRequestClaimedEvent(r *ItemRequest) *ItemRequestClaimedEvent {
	e := &ItemRequestClaimedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeItemRequestClaimed, AggregateTypeItemRequest, r.ID, r.UpdatedAt),
		UserID:            r.UserID,
		FulfillerUsername: r.FulfillerUsername,
	}
	if r.FulfillerID != nil {
		e.FulfillerID = *r.FulfillerID
	}
	if r.FulfillerCharacter != nil {
		e.Character = *r.FulfillerCharacter
	}
	return e
}

// EventType returns the event type name
func (e *ItemRequestClaimedEvent) EventType() string {
	return EventTypeItemRequestClaimed
}

// ContractCreatedEvent is raised when a contract ID is linked to a request.
// It starts contract monitoring.
type ContractCreatedEvent struct {
	shared.BaseDomainEvent
	ContractID int64          `json:"contract_id"`
	Issuer     ContractIssuer `json:"issuer"`
}

// NewContractCreatedEvent creates a new ContractCreatedEvent
func NewContractCreatedEvent(r *ItemRequest) *ContractCreatedEvent {
	e := &ContractCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractCreated, AggregateTypeItemRequest, r.ID, r.UpdatedAt),
		Issuer:          r.ContractIssuer,
	}
	if r.ContractID != nil {
		e.ContractID = *r.ContractID
	}
	return e
}

// EventType returns the event type name
func (e *ContractCreatedEvent) EventType() string {
	return EventTypeContractCreated
}

// ContractAcceptedEvent is raised when the contract is accepted in game
type ContractAcceptedEvent struct {
	shared.BaseDomainEvent
	ContractID int64 `json:"contract_id"`
}

// NewContractAcceptedEvent creates a new ContractAcceptedEvent
func NewContractAcceptedEvent(r *ItemRequest) *ContractAcceptedEvent {
	e := &ContractAcceptedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractAccepted, AggregateTypeItemRequest, r.ID, r.UpdatedAt),
	}
	if r.ContractID != nil {
		e.ContractID = *r.ContractID
	}
	return e
}

// EventType returns the event type name
func (e *ContractAcceptedEvent) EventType() string {
	return EventTypeContractAccepted
}

// ItemRequestCompletedEvent is raised when a request is fulfilled
type ItemRequestCompletedEvent struct {
	shared.BaseDomainEvent
	FulfillerID   int64 `json:"fulfiller_id"`
	TotalQuantity int64 `json:"total_quantity"`
}

// NewItemRequestCompletedEvent creates a new ItemRequestCompletedEvent
func NewItemRequestCompletedEvent(r *ItemRequest) *ItemRequestCompletedEvent {
	e := &ItemRequestCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemRequestCompleted, AggregateTypeItemRequest, r.ID, r.UpdatedAt),
		TotalQuantity:   r.TotalQuantity(),
	}
	if r.FulfillerID != nil {
		e.FulfillerID = *r.FulfillerID
	}
	return e
}

// EventType returns the event type name
func (e *ItemRequestCompletedEvent) EventType() string {
	return EventTypeItemRequestCompleted
}

// ItemRequestCancelledEvent is raised when the requester withdraws a request
type ItemRequestCancelledEvent struct {
	shared.BaseDomainEvent
	PreviousFulfillerID *int64 `json:"previous_fulfiller_id,omitempty"`
}

// NewItemRequestCancelledEvent creates a new ItemRequestCancelledEvent
func NewItemRequestCancelledEvent(r *ItemRequest) *ItemRequestCancelledEvent {
	return &ItemRequestCancelledEvent{
		BaseDomainEvent:     shared.NewBaseDomainEvent(EventTypeItemRequestCancelled, AggregateTypeItemRequest, r.ID, r.UpdatedAt),
		PreviousFulfillerID: r.FulfillerID,
	}
}

// EventType returns the event type name
func (e *ItemRequestCancelledEvent) EventType() string {
	return EventTypeItemRequestCancelled
}

// ItemRequestExpiredEvent is raised when an abandoned request is expired
type ItemRequestExpiredEvent struct {
	shared.BaseDomainEvent
}

// NewItemRequestExpiredEvent creates a new ItemRequestExpiredEvent
func NewItemRequestExpiredEvent(r *ItemRequest) *ItemRequestExpiredEvent {
	return &ItemRequestExpiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemRequestExpired, AggregateTypeItemRequest, r.ID, r.UpdatedAt),
	}
}

// EventType returns the event type name
func (e *ItemRequestExpiredEvent) EventType() string {
	return EventTypeItemRequestExpired
}

// FulfillerRatedEvent is raised when a requester rates the fulfiller
type FulfillerRatedEvent struct {
	shared.BaseDomainEvent
	FulfillerID int64 `json:"fulfiller_id"`
	Score       int   `json:"score"`
}

// NewFulfillerRatedEvent creates a new FulfillerRatedEvent
func NewFulfillerRatedEvent(r *ItemRequest, score int) *FulfillerRatedEvent {
	e := &FulfillerRatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFulfillerRated, AggregateTypeItemRequest, r.ID, r.UpdatedAt),
		Score:           score,
	}
	if r.FulfillerID != nil {
		e.FulfillerID = *r.FulfillerID
	}
	return e
}

// EventType returns the event type name
func (e *FulfillerRatedEvent) EventType() string {
	return EventTypeFulfillerRated
}
