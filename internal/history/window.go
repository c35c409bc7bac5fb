package history

import (
	"fmt"
	"strconv"
	"strings"
)

// RangeAll selects the whole history.
const RangeAll = "ALL"

// Ranges are the display windows offered to consumers, in days.
var Ranges = []string{"30", "90", "180", "365", RangeAll}

// ParseRange turns a range token into a suffix length. "ALL" returns 0,
// which PriceSeries.Suffix treats as the full series.
func ParseRange(token string) (int, error) {
	token = strings.TrimSpace(token)
	if strings.EqualFold(token, RangeAll) {
		return 0, nil
	}
	for _, r := range Ranges {
		if token == r {
			return strconv.Atoi(r)
		}
	}
	return 0, fmt.Errorf("unknown range %q (want one of %s)", token, strings.Join(Ranges, ", "))
}
