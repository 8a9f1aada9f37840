// Package store implements the system of record: client rows, the issued
// invoice ledger, and the question log.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golandec/invoicebot/internal/models"
	"gorm.io/gorm"
)

// Sentinel errors. Callers branch with errors.Is; everything else that comes
// out of this package wraps ErrUnavailable.
var (
	// ErrNotFound indicates a lookup miss.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicatePhone indicates a registration attempt with a phone
	// number that already belongs to another client.
	ErrDuplicatePhone = errors.New("store: phone already registered")
	// ErrUnavailable wraps connectivity and engine failures.
	ErrUnavailable = errors.New("store: unavailable")
)

// Store provides CRUD over clients, the invoice ledger, and the question log.
// All writes are atomic single-row operations.
type Store struct {
	db *gorm.DB
}

// New creates a Store on top of an open GORM connection.
func New(gdb *gorm.DB) *Store {
	return &Store{db: gdb}
}

// unavailable wraps a storage-engine error so that errors.Is(err,
// ErrUnavailable) holds.
func unavailable(op string, err error) error {
	return fmt.Errorf("store: %s: %w: %v", op, ErrUnavailable, err)
}

// CreateClient inserts a new client and returns the generated identifier.
// The phone number is normalized to digits before insert. The unique index
// on phone is the sole arbiter for duplicates, so two concurrent
// registrations cannot both pass a pre-check: the loser's constraint
// violation surfaces as ErrDuplicatePhone either way. Requires a connection
// opened with error translation enabled.
func (s *Store) CreateClient(ctx context.Context, firstName, lastName, phone, city string) (uint, error) {
	client := models.Client{
		FirstName: firstName,
		LastName:  lastName,
		Phone:     NormalizePhone(phone),
		City:      city,
	}
	if err := s.db.WithContext(ctx).Create(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, ErrDuplicatePhone
		}
		return 0, unavailable("create client", err)
	}
	return client.ID, nil
}

// ClientByID fetches a client by its identifier.
func (s *Store) ClientByID(ctx context.Context, id uint) (*models.Client, error) {
	var client models.Client
	err := s.db.WithContext(ctx).First(&client, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, unavailable("client by id", err)
	}
	return &client, nil
}

// ClientByPhone fetches a client by phone number. The input is normalized to
// digits before lookup.
func (s *Store) ClientByPhone(ctx context.Context, phone string) (*models.Client, error) {
	var client models.Client
	err := s.db.WithContext(ctx).Where("phone = ?", NormalizePhone(phone)).First(&client).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, unavailable("client by phone", err)
	}
	return &client, nil
}

// ListClients returns all clients ordered by identifier.
func (s *Store) ListClients(ctx context.Context) ([]models.Client, error) {
	var clients []models.Client
	if err := s.db.WithContext(ctx).Order("id").Find(&clients).Error; err != nil {
		return nil, unavailable("list clients", err)
	}
	return clients, nil
}

// ClientsWithDocuments returns clients that have at least one issued invoice
// recorded, for the periodic balance refresh.
func (s *Store) ClientsWithDocuments(ctx context.Context) ([]models.Client, error) {
	var clients []models.Client
	err := s.db.WithContext(ctx).Where("last_document_id IS NOT NULL").Order("id").Find(&clients).Error
	if err != nil {
		return nil, unavailable("clients with documents", err)
	}
	return clients, nil
}

// UpdateBalance sets the stored balance figure for a client.
func (s *Store) UpdateBalance(ctx context.Context, clientID uint, value string) error {
	err := s.db.WithContext(ctx).Model(&models.Client{}).Where("id = ?", clientID).
		Update("balance", value).Error
	if err != nil {
		return unavailable("update balance", err)
	}
	return nil
}

// UpdateLastDocument sets the client's most-recently-issued artifact reference.
func (s *Store) UpdateLastDocument(ctx context.Context, clientID uint, artifactID string) error {
	err := s.db.WithContext(ctx).Model(&models.Client{}).Where("id = ?", clientID).
		Update("last_document_id", artifactID).Error
	if err != nil {
		return unavailable("update last document", err)
	}
	return nil
}

// RecordIssuedDocument appends one row to the invoice ledger. The client
// foreign key must reference an existing client.
func (s *Store) RecordIssuedDocument(ctx context.Context, doc *models.IssuedDocument) error {
	if doc.LastOpenedAt.IsZero() {
		doc.LastOpenedAt = time.Now()
	}
	if err := s.db.WithContext(ctx).Create(doc).Error; err != nil {
		return unavailable("record issued document", err)
	}
	return nil
}

// DocumentsForChat returns up to limit ledger rows for a chat, newest first.
func (s *Store) DocumentsForChat(ctx context.Context, chatID int64, limit int) ([]models.IssuedDocument, error) {
	var docs []models.IssuedDocument
	err := s.db.WithContext(ctx).Where("chat_id = ?", chatID).
		Order("created_at DESC").Limit(limit).Find(&docs).Error
	if err != nil {
		return nil, unavailable("documents for chat", err)
	}
	return docs, nil
}

// CountDocuments returns the total number of ledger rows.
func (s *Store) CountDocuments(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.IssuedDocument{}).Count(&n).Error; err != nil {
		return 0, unavailable("count documents", err)
	}
	return n, nil
}

// CountClients returns the total number of clients.
func (s *Store) CountClients(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Client{}).Count(&n).Error; err != nil {
		return 0, unavailable("count clients", err)
	}
	return n, nil
}

// RecordQuestion appends one row to the question log with the current date
// and time. Called before the knowledge responder, unconditionally.
func (s *Store) RecordQuestion(ctx context.Context, chatID int64, question string) error {
	now := time.Now()
	q := models.Question{
		ChatID:   chatID,
		Question: question,
		Date:     now.Format("02.01.2006"),
		Time:     now.Format("15:04:05"),
	}
	if err := s.db.WithContext(ctx).Create(&q).Error; err != nil {
		return unavailable("record question", err)
	}
	return nil
}

// AllQuestions returns every logged question in insertion order.
func (s *Store) AllQuestions(ctx context.Context) ([]models.Question, error) {
	var questions []models.Question
	if err := s.db.WithContext(ctx).Order("id").Find(&questions).Error; err != nil {
		return nil, unavailable("all questions", err)
	}
	return questions, nil
}

// CountQuestions returns the total number of logged questions.
func (s *Store) CountQuestions(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Question{}).Count(&n).Error; err != nil {
		return 0, unavailable("count questions", err)
	}
	return n, nil
}
