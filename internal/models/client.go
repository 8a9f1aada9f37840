package models

import "time"

// Client is a registered customer of the cargo service. Phone numbers are
// stored digits-only and are unique across clients.
type Client struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	FirstName string `gorm:"not null"`
	LastName  string `gorm:"not null"`
	Phone     string `gorm:"size:32;not null;uniqueIndex"`
	City      string `gorm:"size:64;not null"`

	// Balance is the figure carried over from the client's most recent
	// invoice sheet. Nil until the first invoice is issued.
	Balance *string

	// LastDocumentID references the most recently issued invoice artifact.
	// Nil for clients that have never had an invoice — "no document yet"
	// is not encoded as a pointer at the template.
	LastDocumentID *string `gorm:"size:128"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
