package progress

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// DefaultTimezone is the zone all "which day is it" questions are answered in
const DefaultTimezone = "Asia/Jakarta"

// ErrUnknownZone is returned for timezone ids outside the fixed registry
var ErrUnknownZone = errors.New("unknown timezone")

type zoneDef struct {
	abbrev string
	offset int // seconds east of UTC
}

// Fixed offsets only. Host tzdata and time.Local are never consulted so the
// projection is identical on every machine.
var zones = map[string]zoneDef{
	"Asia/Jakarta": {abbrev: "WIB", offset: 7 * 60 * 60},
	"UTC":          {abbrev: "UTC", offset: 0},
}

// ResolveZone maps a timezone id to a fixed-offset location
func ResolveZone(id string) (*time.Location, error) {
	def, ok := zones[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %v)", ErrUnknownZone, id, SupportedZones())
	}
	return time.FixedZone(def.abbrev, def.offset), nil
}

// SupportedZones lists the registry ids in stable order
func SupportedZones() []string {
	ids := make([]string, 0, len(zones))
	for id := range zones {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
