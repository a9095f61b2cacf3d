package parser

import (
	"fmt"
	"time"
)

// OffsetForZone computes the signed fractional-hour correction between the
// server's local zone and the user's registered zone at "now". The result is
// what Parse expects as its offset argument.
func OffsetForZone(zone string, now time.Time) (float64, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return 0, fmt.Errorf("unknown timezone %q: %w", zone, err)
	}
	_, serverOffset := now.Zone()
	_, userOffset := now.In(loc).Zone()
	return float64(serverOffset-userOffset) / 3600, nil
}
