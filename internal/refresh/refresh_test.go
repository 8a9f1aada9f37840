package refresh

import (
	"context"
	"errors"
	"io"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/golandec/invoicebot/internal/models"
	"github.com/golandec/invoicebot/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
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
	return store.New(gdb)
}

type fakeProvisioner struct {
	cells map[string]string
	errs  map[string]error
}

func (f *fakeProvisioner) CopyTemplate(ctx context.Context) (string, error) { return "", nil }
func (f *fakeProvisioner) Rename(ctx context.Context, artifactID, title string) error {
	return nil
}
func (f *fakeProvisioner) ReadCell(ctx context.Context, artifactID, cellRef string) (string, error) {
	if err := f.errs[artifactID]; err != nil {
		return "", err
	}
	return f.cells[artifactID+"!"+cellRef], nil
}
func (f *fakeProvisioner) WriteCell(ctx context.Context, artifactID, cellRef, value string) error {
	return nil
}
func (f *fakeProvisioner) ExportPDF(ctx context.Context, artifactID string) ([]byte, error) {
	return nil, nil
}
func (f *fakeProvisioner) Delete(ctx context.Context, artifactID string) error  { return nil }
func (f *fakeProvisioner) Title(ctx context.Context, artifactID string) (string, error) {
	return "", nil
}

func TestSweepUpdatesBalances(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	withDoc, err := st.CreateClient(ctx, "Иван", "Петров", "+996555123456", "Москва")
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	if err := st.UpdateLastDocument(ctx, withDoc, "art-1"); err != nil {
		t.Fatalf("UpdateLastDocument: %v", err)
	}
	withoutDoc, err := st.CreateClient(ctx, "Анна", "Иванова", "+79123456789", "Казань")
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}

	r, err := New(Opts{
		Store:       st,
		Provisioner: &fakeProvisioner{cells: map[string]string{"art-1!K11": "2500"}},
		BalanceCell: "K11",
		Out:         io.Discard,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := r.Sweep(ctx); err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	updated, err := st.ClientByID(ctx, withDoc)
	if err != nil {
		t.Fatalf("ClientByID: %v", err)
	}
	if updated.Balance == nil || *updated.Balance != "2500" {
		t.Errorf("balance = %v, want 2500", updated.Balance)
	}

	untouched, err := st.ClientByID(ctx, withoutDoc)
	if err != nil {
		t.Fatalf("ClientByID: %v", err)
	}
	if untouched.Balance != nil {
		t.Errorf("client without documents got balance %v", *untouched.Balance)
	}
}

func TestSweepSkipsFailingClients(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	broken, err := st.CreateClient(ctx, "Иван", "Петров", "+996555123456", "Москва")
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	if err := st.UpdateLastDocument(ctx, broken, "art-broken"); err != nil {
		t.Fatalf("UpdateLastDocument: %v", err)
	}
	healthy, err := st.CreateClient(ctx, "Анна", "Иванова", "+79123456789", "Казань")
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	if err := st.UpdateLastDocument(ctx, healthy, "art-ok"); err != nil {
		t.Fatalf("UpdateLastDocument: %v", err)
	}

	r, err := New(Opts{
		Store: st,
		Provisioner: &fakeProvisioner{
			cells: map[string]string{"art-ok!K11": "900"},
			errs:  map[string]error{"art-broken": errors.New("sheet deleted")},
		},
		BalanceCell: "K11",
		Out:         io.Discard,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := r.Sweep(ctx); err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	got, err := st.ClientByID(ctx, healthy)
	if err != nil {
		t.Fatalf("ClientByID: %v", err)
	}
	if got.Balance == nil || *got.Balance != "900" {
		t.Errorf("healthy client balance = %v, want 900", got.Balance)
	}
}

func TestNewRejectsBadSchedule(t *testing.T) {
	st := newTestStore(t)
	r, err := New(Opts{
		Store:       st,
		Provisioner: &fakeProvisioner{},
		BalanceCell: "K11",
		Schedule:    "not a cron line",
		Out:         io.Discard,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := r.Start(ctx); err == nil {
		t.Error("expected an error for a malformed schedule")
	}
}
