package extraction

// Extractor turns receipt text into an Outcome
type Extractor struct {
	finder FieldFinder
}

// New creates an Extractor backed by the label rules in RuleFinder
func New() *Extractor {
	return NewWithFinder(RuleFinder{})
}

// NewWithFinder creates an Extractor with a custom FieldFinder
func NewWithFinder(finder FieldFinder) *Extractor {
	if finder == nil {
		finder = RuleFinder{}
	}
	return &Extractor{finder: finder}
}

// Extract runs both field searches and resolves the date.
// A missing product is reported before a missing date, and a missing date
// before an unparseable one. Any input, including "", yields an Outcome.
func (e *Extractor) Extract(text string) Outcome {
	product, productFound := e.finder.FindProductLine(text)
	token, dateFound := e.finder.FindDateToken(text)

	if !productFound {
		return failure(NoProductMatch)
	}
	if !dateFound {
		return failure(NoDateMatch)
	}

	date, ok := ResolveDate(token)
	if !ok {
		return failure(DateUnparseable)
	}
	return success(product, date)
}
