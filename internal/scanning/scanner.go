package scanning

// Scanner defines the interface for turning a receipt image into text
type Scanner interface {
	// ScanText reads all text from a receipt image/PDF and returns it normalized
	ScanText(imageData []byte, contentType string) (string, error)
	// Close closes the scanner and releases resources
	Close() error
}
