package warranty

import (
	"fmt"

	"github.com/zombor/warranty-tracker/internal/extraction"
)

const dateLayout = "2006-01-02"

// GenericFailureMessage is shown when a caller prefers not to say which field was missing
const GenericFailureMessage = "Could not extract product name or purchase date. Try a clearer bill or format."

// Reminder renders the chat-style reminder for a warranty
func Reminder(w *Warranty) string {
	return fmt.Sprintf("🔔 *Warranty Reminder*\n\n"+
		"Hi! This is a reminder that your *%s* warranty will expire on *%s*.\n"+
		"Don't miss out on your free service or repair. Reach out to your service center now!",
		w.Product, w.ExpiryDate.Format(dateLayout))
}

// FailureMessage returns a user facing message for an extraction failure
func FailureMessage(kind extraction.FailureKind) string {
	switch kind {
	case extraction.NoProductMatch:
		return "Could not find a product name on the bill. Make sure the Product, Item or Model line is visible."
	case extraction.NoDateMatch:
		return "Could not find a purchase date on the bill. Make sure the Date or Purchase line is visible."
	case extraction.DateUnparseable:
		return "The purchase date on the bill could not be read. Dates must look like DD-MM-YYYY or DD/MM/YYYY."
	default:
		return GenericFailureMessage
	}
}
