package warranty

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/warranty-tracker/internal/extraction"
	"github.com/zombor/warranty-tracker/internal/scanning"
)

// Extractor recovers receipt fields from OCR text
type Extractor interface {
	Extract(text string) extraction.Outcome
}

// IDGenerator generates unique IDs for warranties
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type uuidGenerator struct{}

func (uuidGenerator) Generate() string {
	return uuid.NewString()
}

type defaultTimeSource struct{}

func (defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service handles warranty operations
type Service struct {
	db          DB
	scanner     scanning.Scanner
	storage     Storage
	extractor   Extractor
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with the rule based extractor, UUIDs and the wall clock
func NewService(db DB, scanner scanning.Scanner, storage Storage) *Service {
	return NewServiceWithDeps(db, scanner, storage, extraction.New(), uuidGenerator{}, defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, scanner scanning.Scanner, storage Storage, extractor Extractor, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		scanner:     scanner,
		storage:     storage,
		extractor:   extractor,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

var (
	reFilenameJunk = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	reFilenameWS   = regexp.MustCompile(`\s+`)
)

// sanitizeFilename strips special characters and long phone-generated names
func sanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	ext := strings.ToLower(reFilenameJunk.ReplaceAllString(filepath.Ext(filename), ""))
	base := strings.TrimSuffix(filename, filepath.Ext(filename))

	base = reFilenameJunk.ReplaceAllString(base, "")
	base = strings.TrimSpace(reFilenameWS.ReplaceAllString(base, " "))

	const maxLen = 50
	if len(base) > maxLen {
		base = base[:maxLen]
	}
	if base == "" {
		base = "receipt"
	}
	if ext != "" {
		ext = "." + ext
	}
	return base + ext
}

// draft runs the extractor and builds an unsaved warranty
func (s *Service) draft(text string, now time.Time) (*Warranty, error) {
	outcome := s.extractor.Extract(text)
	if !outcome.OK() {
		return nil, &ExtractionFailure{Kind: outcome.Failure, Text: text}
	}
	return &Warranty{
		Product:      outcome.Product,
		PurchaseDate: outcome.PurchaseDate,
		ExpiryDate:   Expiry(outcome.PurchaseDate),
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ProcessReceipt stores an uploaded receipt, reads it and saves the resulting warranty
func (s *Service) ProcessReceipt(filename string, data []byte, contentType string) (*Warranty, error) {
	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", id, sanitizeFilename(filename)), data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	text, err := s.scanner.ScanText(data, contentType)
	if err != nil {
		slog.Error("Failed to scan receipt",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		s.removeFile(savedPath)
		return nil, fmt.Errorf("scanning receipt: %w", err)
	}

	w, err := s.draft(text, now)
	if err != nil {
		slog.Warn("Could not extract warranty fields",
			"filename", filename,
			"error", err,
			"text_length", len(text),
		)
		s.removeFile(savedPath)
		return nil, err
	}

	w.ID = id
	w.Filename = savedPath
	w.ContentType = contentType

	if err := s.db.SaveWarranty(w); err != nil {
		s.removeFile(savedPath)
		return nil, fmt.Errorf("saving warranty to database: %w", err)
	}

	slog.Info("Warranty created", "id", id, "product", w.Product, "expires", w.ExpiryDate.Format(dateLayout))
	return w, nil
}

// ExtractText runs the extractor over caller supplied text without saving anything
func (s *Service) ExtractText(text string) (*Warranty, error) {
	return s.draft(text, s.timeSource.Now())
}

func (s *Service) removeFile(name string) {
	if err := s.storage.Delete(name); err != nil {
		slog.Warn("Failed to delete file", "filename", name, "error", err)
	}
}

// GetWarranty retrieves a warranty by ID
func (s *Service) GetWarranty(id string) (*Warranty, error) {
	w, err := s.db.GetWarranty(id)
	if err != nil {
		return nil, fmt.Errorf("getting warranty: %w", err)
	}
	return w, nil
}

// ListWarranties returns all warranties, soonest expiry first
func (s *Service) ListWarranties() ([]*Warranty, error) {
	warranties, err := s.db.ListWarranties()
	if err != nil {
		return nil, fmt.Errorf("listing warranties: %w", err)
	}
	slices.SortStableFunc(warranties, func(a, b *Warranty) int {
		if c := a.ExpiryDate.Compare(b.ExpiryDate); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return warranties, nil
}

// ListExpiring returns warranties that expire between today and the given
// number of days from today, both inclusive
func (s *Service) ListExpiring(days int) ([]*Warranty, error) {
	if days < 0 {
		return nil, fmt.Errorf("days must not be negative: %d", days)
	}

	all, err := s.ListWarranties()
	if err != nil {
		return nil, err
	}

	now := s.timeSource.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	cutoff := today.AddDate(0, 0, days)

	expiring := make([]*Warranty, 0)
	for _, w := range all {
		if w.ExpiryDate.Before(today) || w.ExpiryDate.After(cutoff) {
			continue
		}
		expiring = append(expiring, w)
	}
	return expiring, nil
}

// GetReminder renders the reminder message for a stored warranty
func (s *Service) GetReminder(id string) (string, error) {
	w, err := s.GetWarranty(id)
	if err != nil {
		return "", err
	}
	return Reminder(w), nil
}

// DeleteWarranty removes a warranty and its receipt file
func (s *Service) DeleteWarranty(id string) error {
	w, err := s.db.GetWarranty(id)
	if err != nil {
		return fmt.Errorf("getting warranty for deletion: %w", err)
	}

	if w.Filename != "" {
		// Log error but continue with database deletion
		s.removeFile(w.Filename)
	}

	if err := s.db.DeleteWarranty(id); err != nil {
		return fmt.Errorf("deleting warranty from database: %w", err)
	}
	return nil
}

// GetWarrantyFile retrieves the receipt file for a warranty
func (s *Service) GetWarrantyFile(id string) ([]byte, string, error) {
	w, err := s.db.GetWarranty(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting warranty: %w", err)
	}
	if w.Filename == "" {
		return nil, "", fmt.Errorf("warranty %s has no receipt file", id)
	}

	data, err := s.storage.Get(w.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("getting receipt file: %w", err)
	}

	return data, w.ContentType, nil
}
