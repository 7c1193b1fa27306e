package persistence

import (
	"strings"

	"github.com/atthompson13/aa-shoppingcart/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ValidateSortOrder normalizes a sort direction to ASC or DESC.
// Anything other than "asc" (any case) sorts descending.
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when it is whitelisted, else defaultField.
// Column names never reach SQL unless they appear in allowedFields.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	if trimmed := strings.TrimSpace(sortField); allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// orderRule describes how one table may be ordered
type orderRule struct {
	allowed  map[string]bool
	fallback string
	// tiebreak keeps paging stable when the primary column has duplicates
	tiebreak string
	// tiebreakFollows makes the tiebreak use the primary direction instead of ASC
	tiebreakFollows bool
}

// ItemRequestSortFields contains allowed sort fields for item requests
var ItemRequestSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"status":     true,
	"claimed_at": true,
}

// FulfillmentSortFields contains allowed sort fields for the fulfiller list
var FulfillmentSortFields = map[string]bool{
	"total_fulfilled": true,
	"total_volume":    true,
	"rating":          true,
	"last_fulfilled":  true,
	"username":        true,
}

var (
	itemRequestSort = orderRule{
		allowed:         ItemRequestSortFields,
		fallback:        "created_at",
		tiebreak:        "id",
		tiebreakFollows: true,
	}
	fulfillmentSort = orderRule{
		allowed:  FulfillmentSortFields,
		fallback: "total_fulfilled",
		tiebreak: "id",
	}
)

// column resolves the primary column and its direction
func (s orderRule) column(filter shared.Filter) (string, bool) {
	return ValidateSortField(filter.OrderBy, s.allowed, s.fallback),
		ValidateSortOrder(filter.OrderDir) == "DESC"
}

// apply adds the ORDER BY clauses for filter to query
func (s orderRule) apply(query *gorm.DB, filter shared.Filter) *gorm.DB {
	field, desc := s.column(filter)
	query = query.Order(clause.OrderByColumn{Column: clause.Column{Name: field}, Desc: desc})
	if s.tiebreak == "" || s.tiebreak == field {
		return query
	}
	return query.Order(clause.OrderByColumn{
		Column: clause.Column{Name: s.tiebreak},
		Desc:   s.tiebreakFollows && desc,
	})
}
