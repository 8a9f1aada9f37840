package models

// Question is one logged free-text question from a chat, written before the
// knowledge responder is consulted. Date and time are stored as separate
// formatted strings, matching the administrative export format.
type Question struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"`
	ChatID   int64  `gorm:"not null;index"`
	Question string `gorm:"type:text;not null"`
	Date     string `gorm:"size:10;not null"`
	Time     string `gorm:"size:8;not null"`
}
