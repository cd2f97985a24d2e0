// Package extraction recovers a product name and purchase date from raw
// OCR text of a purchase receipt.
//
// The package does no I/O and keeps no state between calls, so a single
// Extractor may be shared by any number of goroutines.
package extraction

import (
	"errors"
	"time"
)

// FailureKind classifies why an extraction did not succeed
type FailureKind int

const (
	// NoFailure is the zero value carried by successful outcomes
	NoFailure FailureKind = iota
	// NoProductMatch means no product, item or model line was found
	NoProductMatch
	// NoDateMatch means no labelled date token was found
	NoDateMatch
	// DateUnparseable means a date token was found but is not a real date
	// in one of the accepted layouts
	DateUnparseable
)

// String returns the wire name of the failure kind
func (k FailureKind) String() string {
	switch k {
	case NoFailure:
		return "none"
	case NoProductMatch:
		return "no_product_match"
	case NoDateMatch:
		return "no_date_match"
	case DateUnparseable:
		return "date_unparseable"
	default:
		return "unknown"
	}
}

// Error is the error form of a failed Outcome
type Error struct {
	Kind FailureKind
}

func (e *Error) Error() string {
	switch e.Kind {
	case NoProductMatch:
		return "no product line found"
	case NoDateMatch:
		return "no purchase date found"
	case DateUnparseable:
		return "purchase date is not a valid date"
	default:
		return "extraction failed: " + e.Kind.String()
	}
}

// Is matches any *Error of the same kind, so the sentinels below work with errors.Is
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrNoProductMatch  = &Error{Kind: NoProductMatch}
	ErrNoDateMatch     = &Error{Kind: NoDateMatch}
	ErrDateUnparseable = &Error{Kind: DateUnparseable}
)

// Outcome is the result of a single extraction. When Failure is NoFailure
// both Product and PurchaseDate are set; otherwise both are zero.
type Outcome struct {
	Product      string
	PurchaseDate time.Time
	Failure      FailureKind
}

// OK reports whether the extraction succeeded
func (o Outcome) OK() bool {
	return o.Failure == NoFailure
}

// Err returns nil for a successful outcome and an *Error otherwise
func (o Outcome) Err() error {
	if o.OK() {
		return nil
	}
	return &Error{Kind: o.Failure}
}

func success(product string, date time.Time) Outcome {
	return Outcome{Product: product, PurchaseDate: date}
}

func failure(kind FailureKind) Outcome {
	return Outcome{Failure: kind}
}
