package warranty

import (
	"fmt"
	"time"

	"github.com/zombor/warranty-tracker/internal/extraction"
)

// CoverageDays is the fixed warranty length applied to every purchase
const CoverageDays = 365

// Warranty represents a product warranty recovered from a purchase receipt
type Warranty struct {
	ID           string    `json:"id"`
	Product      string    `json:"product"`
	PurchaseDate time.Time `json:"purchase_date"`
	ExpiryDate   time.Time `json:"expiry_date"`
	Filename     string    `json:"filename,omitempty"`
	ContentType  string    `json:"content_type,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Expiry returns the last covered day for a purchase date
func Expiry(purchase time.Time) time.Time {
	return purchase.AddDate(0, 0, CoverageDays)
}

// ExtractionFailure is returned when a receipt was read but its fields
// could not be recovered. Text is the transcript the extractor saw.
type ExtractionFailure struct {
	Kind extraction.FailureKind
	Text string
}

func (e *ExtractionFailure) Error() string {
	return fmt.Sprintf("extracting receipt fields: %s", e.Unwrap())
}

// Unwrap exposes the extraction error so errors.Is works with the extraction sentinels
func (e *ExtractionFailure) Unwrap() error {
	return &extraction.Error{Kind: e.Kind}
}
