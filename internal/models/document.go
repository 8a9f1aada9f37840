package models

import "time"

// IssuedDocument is one row of the invoice ledger: a successfully
// provisioned invoice sheet. Rows are append-only; client details are
// denormalized as a snapshot taken at issue time.
type IssuedDocument struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	ArtifactID string `gorm:"size:128;not null;index"`
	ChatID     int64  `gorm:"not null;index"`

	// Snapshot of the client at issue time.
	FirstName string `gorm:"not null"`
	LastName  string `gorm:"not null"`
	City      string `gorm:"size:64;not null"`
	Phone     string `gorm:"size:32;not null"`

	ManagerName string `gorm:"not null"`
	ClientID    uint   `gorm:"not null;index"`

	CreatedAt    time.Time
	LastOpenedAt time.Time

	Client Client `gorm:"foreignKey:ClientID"`
}
