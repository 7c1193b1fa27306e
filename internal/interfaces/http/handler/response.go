package handler

import "github.com/atthompson13/aa-shoppingcart/internal/interfaces/http/dto"

// The types below only describe the dto.Response envelope to swag.

// APIResponse is the success envelope with a typed data field
// @Description Success envelope; list endpoints add meta with paging totals
type APIResponse[T any] struct {
	Success bool      `json:"success" example:"true"`
	Data    T         `json:"data,omitempty"`
	Meta    *dto.Meta `json:"meta,omitempty"`
}

// ErrorResponse is the failure envelope
// @Description Failure envelope; error.code is stable, error.message is for people
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// SuccessResponse is an envelope with only a message
// @Description Success envelope without data
type SuccessResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message,omitempty" example:"Logged out"`
}
