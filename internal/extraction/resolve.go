package extraction

import "time"

// dateLayouts are tried in order; day always comes before month.
// Single-digit day/month and two-digit years are intentionally not accepted.
var dateLayouts = []string{
	"02-01-2006",
	"02/01/2006",
}

// ResolveDate interprets a raw date token as a calendar date at midnight UTC.
// It returns false when the token fits neither layout or names a day that
// does not exist, such as 31-02-2023.
func ResolveDate(token string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, token); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}
