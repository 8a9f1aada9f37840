// Package sheets provisions invoice artifacts: Google Sheets copied from a
// fixed template, written to, exported, and deleted on rollback.
package sheets

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"time"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

const pdfMimeType = "application/pdf"

// driveAPI abstracts the Drive v3 calls we use, enabling test fakes.
type driveAPI interface {
	Copy(ctx context.Context, fileID, title string) (string, error)
	CreatePermission(ctx context.Context, fileID string, perm *drive.Permission) error
	Rename(ctx context.Context, fileID, title string) error
	Delete(ctx context.Context, fileID string) error
	Export(ctx context.Context, fileID, mimeType string) ([]byte, error)
	Title(ctx context.Context, fileID string) (string, error)
}

// sheetsAPI abstracts the Sheets v4 calls we use.
type sheetsAPI interface {
	ReadCell(ctx context.Context, spreadsheetID, cellRef string) (string, error)
	WriteCell(ctx context.Context, spreadsheetID, cellRef, value string) error
}

// Service provisions invoice artifacts from a template spreadsheet. Every
// method except URL and ExtractID performs a network call and must be
// treated as slow and fallible.
type Service struct {
	drive       driveAPI
	sheets      sheetsAPI
	templateID  string
	operator    string
	shareAnyone bool
}

// Opts holds parameters for creating a Service.
type Opts struct {
	CredentialsJSON []byte // service-account key, decoded JSON
	TemplateID      string // spreadsheet copied for every invoice
	OperatorEmail   string // account granted writer access on each copy
	ShareAnyone     bool   // grant "anyone with the link: writer"

	// For testing: inject fakes instead of real Google APIs.
	Drive  driveAPI
	Sheets sheetsAPI
}

// New creates a Service. Real Drive and Sheets clients are built from the
// service-account credentials unless fakes are injected.
func New(ctx context.Context, opts Opts) (*Service, error) {
	if opts.TemplateID == "" {
		return nil, fmt.Errorf("sheets: template id is required")
	}

	s := &Service{
		drive:       opts.Drive,
		sheets:      opts.Sheets,
		templateID:  opts.TemplateID,
		operator:    opts.OperatorEmail,
		shareAnyone: opts.ShareAnyone,
	}

	if s.drive == nil || s.sheets == nil {
		if len(opts.CredentialsJSON) == 0 {
			return nil, fmt.Errorf("sheets: service-account credentials are required")
		}
		creds := option.WithCredentialsJSON(opts.CredentialsJSON)

		dsvc, err := drive.NewService(ctx, creds, option.WithScopes(drive.DriveScope))
		if err != nil {
			return nil, fmt.Errorf("sheets: drive service: %w", err)
		}
		ssvc, err := sheetsapi.NewService(ctx, creds, option.WithScopes(sheetsapi.SpreadsheetsScope))
		if err != nil {
			return nil, fmt.Errorf("sheets: sheets service: %w", err)
		}
		s.drive = &realDrive{svc: dsvc}
		s.sheets = &realSheets{svc: ssvc}
	}

	return s, nil
}

// CopyTemplate duplicates the template spreadsheet and grants write access:
// always to the operator account, and — when share-anyone is enabled — to
// anyone with the link. Returns the new artifact's identifier.
func (s *Service) CopyTemplate(ctx context.Context) (string, error) {
	title := fmt.Sprintf("Счет-фактура - %s", time.Now().Format("02.01.2006"))
	id, err := s.drive.Copy(ctx, s.templateID, title)
	if err != nil {
		return "", fmt.Errorf("sheets: copy template: %w", err)
	}
	if id == "" {
		return "", fmt.Errorf("sheets: copy template: empty artifact id")
	}

	if s.operator != "" {
		perm := &drive.Permission{Type: "user", Role: "writer", EmailAddress: s.operator}
		if err := s.drive.CreatePermission(ctx, id, perm); err != nil {
			return "", fmt.Errorf("sheets: grant operator access: %w", err)
		}
	}
	if s.shareAnyone {
		perm := &drive.Permission{Type: "anyone", Role: "writer"}
		if err := s.drive.CreatePermission(ctx, id, perm); err != nil {
			return "", fmt.Errorf("sheets: grant link access: %w", err)
		}
	}
	return id, nil
}

// Rename sets the artifact's title. Callers treat failure as non-fatal.
func (s *Service) Rename(ctx context.Context, artifactID, title string) error {
	if err := s.drive.Rename(ctx, artifactID, title); err != nil {
		return fmt.Errorf("sheets: rename %s: %w", artifactID, err)
	}
	return nil
}

// ReadCell returns the value of a single cell on the first sheet, empty
// string when the cell is blank.
func (s *Service) ReadCell(ctx context.Context, artifactID, cellRef string) (string, error) {
	val, err := s.sheets.ReadCell(ctx, artifactID, cellRef)
	if err != nil {
		return "", fmt.Errorf("sheets: read %s!%s: %w", artifactID, cellRef, err)
	}
	return val, nil
}

// WriteCell sets the value of a single cell on the first sheet.
func (s *Service) WriteCell(ctx context.Context, artifactID, cellRef, value string) error {
	if err := s.sheets.WriteCell(ctx, artifactID, cellRef, value); err != nil {
		return fmt.Errorf("sheets: write %s!%s: %w", artifactID, cellRef, err)
	}
	return nil
}

// ExportPDF converts the artifact to PDF and returns the document bytes.
func (s *Service) ExportPDF(ctx context.Context, artifactID string) ([]byte, error) {
	data, err := s.drive.Export(ctx, artifactID, pdfMimeType)
	if err != nil {
		return nil, fmt.Errorf("sheets: export %s: %w", artifactID, err)
	}
	return data, nil
}

// Delete removes the artifact. Used as the compensating action when a flow
// is cancelled after the copy step.
func (s *Service) Delete(ctx context.Context, artifactID string) error {
	if err := s.drive.Delete(ctx, artifactID); err != nil {
		return fmt.Errorf("sheets: delete %s: %w", artifactID, err)
	}
	return nil
}

// Title returns the artifact's current title.
func (s *Service) Title(ctx context.Context, artifactID string) (string, error) {
	title, err := s.drive.Title(ctx, artifactID)
	if err != nil {
		return "", fmt.Errorf("sheets: title %s: %w", artifactID, err)
	}
	return title, nil
}

// URL builds the edit URL for an artifact. Deterministic, no network call.
func URL(artifactID string) string {
	return "https://docs.google.com/spreadsheets/d/" + artifactID + "/edit"
}

var spreadsheetIDRe = regexp.MustCompile(`/d/([a-zA-Z0-9-_]+)`)

// ExtractID pulls the spreadsheet identifier out of a docs.google.com URL.
// Returns empty string if the URL does not contain one.
func ExtractID(sheetURL string) string {
	m := spreadsheetIDRe.FindStringSubmatch(sheetURL)
	if m == nil {
		return ""
	}
	return m[1]
}

// --- real API wrappers ---

type realDrive struct {
	svc *drive.Service
}

func (r *realDrive) Copy(ctx context.Context, fileID, title string) (string, error) {
	f, err := r.svc.Files.Copy(fileID, &drive.File{Name: title}).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return f.Id, nil
}

func (r *realDrive) CreatePermission(ctx context.Context, fileID string, perm *drive.Permission) error {
	_, err := r.svc.Permissions.Create(fileID, perm).Fields("id").Context(ctx).Do()
	return err
}

func (r *realDrive) Rename(ctx context.Context, fileID, title string) error {
	_, err := r.svc.Files.Update(fileID, &drive.File{Name: title}).Context(ctx).Do()
	return err
}

func (r *realDrive) Delete(ctx context.Context, fileID string) error {
	return r.svc.Files.Delete(fileID).Context(ctx).Do()
}

func (r *realDrive) Export(ctx context.Context, fileID, mimeType string) ([]byte, error) {
	resp, err := r.svc.Files.Export(fileID, mimeType).Context(ctx).Download()
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (r *realDrive) Title(ctx context.Context, fileID string) (string, error) {
	f, err := r.svc.Files.Get(fileID).Fields("name").Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return f.Name, nil
}

type realSheets struct {
	svc *sheetsapi.Service
}

func (r *realSheets) ReadCell(ctx context.Context, spreadsheetID, cellRef string) (string, error) {
	vr, err := r.svc.Spreadsheets.Values.Get(spreadsheetID, cellRef).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	if len(vr.Values) == 0 || len(vr.Values[0]) == 0 {
		return "", nil
	}
	return fmt.Sprint(vr.Values[0][0]), nil
}

func (r *realSheets) WriteCell(ctx context.Context, spreadsheetID, cellRef, value string) error {
	vr := &sheetsapi.ValueRange{Values: [][]interface{}{{value}}}
	_, err := r.svc.Spreadsheets.Values.Update(spreadsheetID, cellRef, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	return err
}
