package crawler

import (
	"fmt"
	"strings"
	"time"
)

// publishTimeLayout is the wall-clock format investing.com uses in the
// datetime attribute of listing cards.
const publishTimeLayout = "2006-01-02 15:04:05"

// normalizeTimestamp parses a publish time as UTC wall-clock time and
// returns Unix epoch milliseconds. A record cannot exist without a valid
// timestamp, so a mismatch is returned to the caller rather than swallowed.
func normalizeTimestamp(raw string) (int64, error) {
	t, err := time.ParseInLocation(publishTimeLayout, strings.TrimSpace(raw), time.UTC)
	if err != nil {
		return 0, fmt.Errorf("parse publish time %q: %w", raw, err)
	}
	return t.UnixMilli(), nil
}
