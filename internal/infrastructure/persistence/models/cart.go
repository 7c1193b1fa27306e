package models

import (
	"time"

	"github.com/atthompson13/aa-shoppingcart/internal/domain/cart"
	"github.com/shopspring/decimal"
)

// ItemRequestModel is the persistence model for the ItemRequest aggregate root
type ItemRequestModel struct {
	AggregateModel

	UserID        int64  `gorm:"not null;index"`
	Username      string `gorm:"type:varchar(150);not null;default:''"`
	CharacterID   int64  `gorm:"not null"`
	CharacterName string `gorm:"type:varchar(255);not null;default:''"`

	FulfillerID             *int64 `gorm:"index"`
	FulfillerUsername       string `gorm:"type:varchar(150);not null;default:''"`
	FulfillerCharacterID    *int64
	FulfillerCharacterName  string `gorm:"type:varchar(255);not null;default:''"`
	ESIMonitorCharacterID   *int64 `gorm:"column:esi_monitor_character_id"`
	ESIMonitorCharacterName string `gorm:"column:esi_monitor_character_name;type:varchar(255);not null;default:''"`

	RequestType      cart.RequestType `gorm:"type:varchar(30);not null"`
	Items            []cart.Item      `gorm:"serializer:json;not null"`
	PickupLocation   string           `gorm:"type:varchar(255);not null;default:''"`
	DeliveryLocation string           `gorm:"type:varchar(255);not null;default:''"`
	Description      string           `gorm:"type:text;not null;default:''"`

	RequesterPrice          *int64
	RequesterCollateral     int64 `gorm:"not null;default:0"`
	RequesterExpirationDays int   `gorm:"not null;default:7"`
	MaxBudget               *int64

	FulfillerPrice          *int64
	FulfillerCollateral     *int64
	FulfillerExpirationDays *int
	FulfillerNotes          string `gorm:"type:text;not null;default:''"`

	ContractID          *int64              `gorm:"uniqueIndex:idx_item_requests_contract_id"`
	ContractIssuer      cart.ContractIssuer `gorm:"type:varchar(20);not null;default:''"`
	ContractCreatedAt   *time.Time
	ContractAcceptedAt  *time.Time
	ContractCompletedAt *time.Time

	ClaimedAt       *time.Time
	CancelledAt     *time.Time
	ExpiredAt       *time.Time
	Status          cart.Status `gorm:"type:varchar(30);not null;index"`
	RequesterRating *int
}

// TableName returns the table name for GORM
func (ItemRequestModel) TableName() string {
	return "item_requests"
}

// ToDomain converts the persistence model to a domain ItemRequest
func (m *ItemRequestModel) ToDomain() *cart.ItemRequest {
	r := &cart.ItemRequest{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		UserID:            m.UserID,
		Username:          m.Username,
		Character:         cart.Character{ID: m.CharacterID, Name: m.CharacterName},
		FulfillerID:       m.FulfillerID,
		FulfillerUsername: m.FulfillerUsername,

		RequestType:      m.RequestType,
		Items:            append([]cart.Item(nil), m.Items...),
		PickupLocation:   m.PickupLocation,
		DeliveryLocation: m.DeliveryLocation,
		Description:      m.Description,

		RequesterPrice:          m.RequesterPrice,
		RequesterCollateral:     m.RequesterCollateral,
		RequesterExpirationDays: m.RequesterExpirationDays,
		MaxBudget:               m.MaxBudget,

		FulfillerPrice:          m.FulfillerPrice,
		FulfillerCollateral:     m.FulfillerCollateral,
		FulfillerExpirationDays: m.FulfillerExpirationDays,
		FulfillerNotes:          m.FulfillerNotes,

		ContractID:          m.ContractID,
		ContractIssuer:      m.ContractIssuer,
		ContractCreatedAt:   m.ContractCreatedAt,
		ContractAcceptedAt:  m.ContractAcceptedAt,
		ContractCompletedAt: m.ContractCompletedAt,

		ClaimedAt:       m.ClaimedAt,
		CancelledAt:     m.CancelledAt,
		ExpiredAt:       m.ExpiredAt,
		Status:          m.Status,
		RequesterRating: m.RequesterRating,
	}
	if m.FulfillerCharacterID != nil {
		r.FulfillerCharacter = &cart.Character{ID: *m.FulfillerCharacterID, Name: m.FulfillerCharacterName}
	}
	if m.ESIMonitorCharacterID != nil {
		r.ESIMonitorCharacter = &cart.Character{ID: *m.ESIMonitorCharacterID, Name: m.ESIMonitorCharacterName}
	}
	return r
}

// FromDomain populates the persistence model from a domain ItemRequest
func (m *ItemRequestModel) FromDomain(r *cart.ItemRequest) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.UserID = r.UserID
	m.Username = r.Username
	m.CharacterID = r.Character.ID
	m.CharacterName = r.Character.Name
	m.FulfillerID = r.FulfillerID
	m.FulfillerUsername = r.FulfillerUsername
	m.FulfillerCharacterID, m.FulfillerCharacterName = splitCharacter(r.FulfillerCharacter)
	m.ESIMonitorCharacterID, m.ESIMonitorCharacterName = splitCharacter(r.ESIMonitorCharacter)

	m.RequestType = r.RequestType
	m.Items = append([]cart.Item(nil), r.Items...)
	m.PickupLocation = r.PickupLocation
	m.DeliveryLocation = r.DeliveryLocation
	m.Description = r.Description

	m.RequesterPrice = r.RequesterPrice
	m.RequesterCollateral = r.RequesterCollateral
	m.RequesterExpirationDays = r.RequesterExpirationDays
	m.MaxBudget = r.MaxBudget

	m.FulfillerPrice = r.FulfillerPrice
	m.FulfillerCollateral = r.FulfillerCollateral
	m.FulfillerExpirationDays = r.FulfillerExpirationDays
	m.FulfillerNotes = r.FulfillerNotes

	m.ContractID = r.ContractID
	m.ContractIssuer = r.ContractIssuer
	m.ContractCreatedAt = r.ContractCreatedAt
	m.ContractAcceptedAt = r.ContractAcceptedAt
	m.ContractCompletedAt = r.ContractCompletedAt

	m.ClaimedAt = r.ClaimedAt
	m.CancelledAt = r.CancelledAt
	m.ExpiredAt = r.ExpiredAt
	m.Status = r.Status
	m.RequesterRating = r.RequesterRating
}

// ItemRequestModelFromDomain creates a new persistence model from a domain ItemRequest
func ItemRequestModelFromDomain(r *cart.ItemRequest) *ItemRequestModel {
	m := &ItemRequestModel{}
	m.FromDomain(r)
	return m
}

func splitCharacter(c *cart.Character) (*int64, string) {
	if c == nil {
		return nil, ""
	}
	id := c.ID
	return &id, c.Name
}

// FulfillmentTrackingModel is the persistence model for leaderboard statistics
type FulfillmentTrackingModel struct {
	AggregateModel
	UserID         int64  `gorm:"not null;uniqueIndex"`
	Username       string `gorm:"type:varchar(150);not null;default:''"`
	TotalFulfilled int    `gorm:"not null;default:0;index"`
	TotalVolume    int64  `gorm:"not null;default:0"`
	LastFulfilled  *time.Time
	Rating         decimal.Decimal `gorm:"type:decimal(3,2);not null;default:5"`
	TotalRatings   int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (FulfillmentTrackingModel) TableName() string {
	return "fulfillment_tracking"
}

// ToDomain converts the persistence model to a domain FulfillmentTracking
func (m *FulfillmentTrackingModel) ToDomain() *cart.FulfillmentTracking {
	return &cart.FulfillmentTracking{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		UserID:            m.UserID,
		Username:          m.Username,
		TotalFulfilled:    m.TotalFulfilled,
		TotalVolume:       m.TotalVolume,
		LastFulfilled:     m.LastFulfilled,
		Rating:            m.Rating,
		TotalRatings:      m.TotalRatings,
	}
}

// FromDomain populates the persistence model from a domain FulfillmentTracking
func (m *FulfillmentTrackingModel) FromDomain(f *cart.FulfillmentTracking) {
	m.FromDomainAggregateRoot(f.BaseAggregateRoot)
	m.UserID = f.UserID
	m.Username = f.Username
	m.TotalFulfilled = f.TotalFulfilled
	m.TotalVolume = f.TotalVolume
	m.LastFulfilled = f.LastFulfilled
	m.Rating = f.Rating
	m.TotalRatings = f.TotalRatings
}

// FulfillmentTrackingModelFromDomain creates a new persistence model from a domain FulfillmentTracking
func FulfillmentTrackingModelFromDomain(f *cart.FulfillmentTracking) *FulfillmentTrackingModel {
	m := &FulfillmentTrackingModel{}
	m.FromDomain(f)
	return m
}
