// Package models contains the GORM persistence models for the shopping cart
// tables. Domain types in internal/domain/cart carry no ORM tags; each model
// here has ToDomain and FromDomain mappers and repositories only ever touch
// the models.
package models
