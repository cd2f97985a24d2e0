package extraction

import (
	"regexp"
	"strings"
)

// FieldFinder locates the raw product and date fields in receipt text
type FieldFinder interface {
	// FindProductLine returns the product text following the first product label
	FindProductLine(text string) (string, bool)
	// FindDateToken returns the raw, unvalidated date token following the first date label
	FindDateToken(text string) (string, bool)
}

var (
	// `.` stops at a line break, so the capture runs to the end of the labelled line
	productLine = regexp.MustCompile(`(?i)(?:Product|Item|Model):?\s*(.+)`)

	// RE2 has no backreferences, so matching separators are spelled out per alternative
	dateToken = regexp.MustCompile(`(?i)(?:Date|Purchase|Dated):?\s*(\d{1,2}/\d{1,2}/\d{2,4}|\d{1,2}-\d{1,2}-\d{2,4})`)
)

// RuleFinder finds fields with fixed label patterns
type RuleFinder struct{}

// FindProductLine implements FieldFinder
func (RuleFinder) FindProductLine(text string) (string, bool) {
	m := productLine.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	product := strings.TrimSpace(m[1])
	if product == "" {
		return "", false
	}
	return product, true
}

// FindDateToken implements FieldFinder
func (RuleFinder) FindDateToken(text string) (string, bool) {
	m := dateToken.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}
