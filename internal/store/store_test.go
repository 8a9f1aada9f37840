package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/golandec/invoicebot/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(&models.Client{}, &models.IssuedDocument{}, &models.Question{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(gdb)
}

func TestCreateClientNormalizesPhone(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateClient(ctx, "Иван", "Петров", "+996555123456", "Москва")
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero client id")
	}

	client, err := s.ClientByID(ctx, id)
	if err != nil {
		t.Fatalf("ClientByID: %v", err)
	}
	if client.Phone != "996555123456" {
		t.Errorf("phone = %q, want digits only", client.Phone)
	}
	if client.LastDocumentID != nil {
		t.Errorf("new client has LastDocumentID %v, want nil", *client.LastDocumentID)
	}
}

func TestCreateClientDuplicatePhone(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateClient(ctx, "Иван", "Петров", "+996555123456", "Москва"); err != nil {
		t.Fatalf("first CreateClient: %v", err)
	}
	// Same digits, different formatting. The duplicate comes back from the
	// unique index itself, not a pre-check, so a concurrent loser gets the
	// same answer.
	_, err := s.CreateClient(ctx, "Анна", "Иванова", "996555123456", "Казань")
	if !errors.Is(err, ErrDuplicatePhone) {
		t.Fatalf("second CreateClient err = %v, want ErrDuplicatePhone", err)
	}

	n, err := s.CountClients(ctx)
	if err != nil {
		t.Fatalf("CountClients: %v", err)
	}
	if n != 1 {
		t.Errorf("duplicate registration left %d rows, want 1", n)
	}
}

func TestClientLookupMisses(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.ClientByID(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("ClientByID miss err = %v, want ErrNotFound", err)
	}
	if _, err := s.ClientByPhone(ctx, "+70000000000"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ClientByPhone miss err = %v, want ErrNotFound", err)
	}
}

func TestClientByPhoneNormalizesInput(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateClient(ctx, "Иван", "Петров", "+996555123456", "Москва")
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	client, err := s.ClientByPhone(ctx, "+996 555 123 456")
	if err != nil {
		t.Fatalf("ClientByPhone: %v", err)
	}
	if client.ID != id {
		t.Errorf("ClientByPhone returned id %d, want %d", client.ID, id)
	}
}

func TestBalanceAndLastDocument(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateClient(ctx, "Иван", "Петров", "+996555123456", "Москва")
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}

	withDocs, err := s.ClientsWithDocuments(ctx)
	if err != nil {
		t.Fatalf("ClientsWithDocuments: %v", err)
	}
	if len(withDocs) != 0 {
		t.Fatalf("expected no clients with documents, got %d", len(withDocs))
	}

	if err := s.UpdateLastDocument(ctx, id, "art-1"); err != nil {
		t.Fatalf("UpdateLastDocument: %v", err)
	}
	if err := s.UpdateBalance(ctx, id, "1500"); err != nil {
		t.Fatalf("UpdateBalance: %v", err)
	}

	client, err := s.ClientByID(ctx, id)
	if err != nil {
		t.Fatalf("ClientByID: %v", err)
	}
	if client.LastDocumentID == nil || *client.LastDocumentID != "art-1" {
		t.Errorf("LastDocumentID = %v, want art-1", client.LastDocumentID)
	}
	if client.Balance == nil || *client.Balance != "1500" {
		t.Errorf("Balance = %v, want 1500", client.Balance)
	}

	withDocs, err = s.ClientsWithDocuments(ctx)
	if err != nil {
		t.Fatalf("ClientsWithDocuments: %v", err)
	}
	if len(withDocs) != 1 || withDocs[0].ID != id {
		t.Errorf("ClientsWithDocuments = %v, want the one client", withDocs)
	}
}

func TestDocumentsForChatOrderAndLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateClient(ctx, "Иван", "Петров", "+996555123456", "Москва")
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, artifact := range []string{"art-1", "art-2", "art-3"} {
		doc := &models.IssuedDocument{
			ArtifactID:  artifact,
			ChatID:      100,
			FirstName:   "Иван",
			LastName:    "Петров",
			City:        "Москва",
			Phone:       "996555123456",
			ManagerName: "Алия",
			ClientID:    id,
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		}
		if err := s.RecordIssuedDocument(ctx, doc); err != nil {
			t.Fatalf("RecordIssuedDocument %s: %v", artifact, err)
		}
	}

	docs, err := s.DocumentsForChat(ctx, 100, 2)
	if err != nil {
		t.Fatalf("DocumentsForChat: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d docs, want 2", len(docs))
	}
	if docs[0].ArtifactID != "art-3" || docs[1].ArtifactID != "art-2" {
		t.Errorf("order = %s, %s; want art-3, art-2", docs[0].ArtifactID, docs[1].ArtifactID)
	}

	other, err := s.DocumentsForChat(ctx, 200, 10)
	if err != nil {
		t.Fatalf("DocumentsForChat other chat: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("other chat has %d docs, want 0", len(other))
	}
}

func TestRecordIssuedDocumentDefaultsLastOpened(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateClient(ctx, "Иван", "Петров", "+996555123456", "Москва")
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	doc := &models.IssuedDocument{
		ArtifactID: "art-1",
		ChatID:     100,
		ClientID:   id,
	}
	if err := s.RecordIssuedDocument(ctx, doc); err != nil {
		t.Fatalf("RecordIssuedDocument: %v", err)
	}
	if doc.LastOpenedAt.IsZero() {
		t.Error("LastOpenedAt not defaulted")
	}
}

func TestQuestionLog(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.RecordQuestion(ctx, 100, "когда доставка в казань?"); err != nil {
		t.Fatalf("RecordQuestion: %v", err)
	}
	if err := s.RecordQuestion(ctx, 200, "сколько стоит?"); err != nil {
		t.Fatalf("RecordQuestion: %v", err)
	}

	questions, err := s.AllQuestions(ctx)
	if err != nil {
		t.Fatalf("AllQuestions: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(questions))
	}
	if questions[0].Question != "когда доставка в казань?" {
		t.Errorf("first question = %q", questions[0].Question)
	}
	if _, err := time.Parse("02.01.2006", questions[0].Date); err != nil {
		t.Errorf("date %q not in dd.mm.yyyy form: %v", questions[0].Date, err)
	}
	if _, err := time.Parse("15:04:05", questions[0].Time); err != nil {
		t.Errorf("time %q not in hh:mm:ss form: %v", questions[0].Time, err)
	}

	n, err := s.CountQuestions(ctx)
	if err != nil {
		t.Fatalf("CountQuestions: %v", err)
	}
	if n != 2 {
		t.Errorf("CountQuestions = %d, want 2", n)
	}
}

func TestCounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateClient(ctx, "Иван", "Петров", "+996555123456", "Москва"); err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	clients, err := s.CountClients(ctx)
	if err != nil {
		t.Fatalf("CountClients: %v", err)
	}
	if clients != 1 {
		t.Errorf("CountClients = %d, want 1", clients)
	}
	docs, err := s.CountDocuments(ctx)
	if err != nil {
		t.Fatalf("CountDocuments: %v", err)
	}
	if docs != 0 {
		t.Errorf("CountDocuments = %d, want 0", docs)
	}
}
