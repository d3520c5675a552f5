package platforms

import (
	"strconv"

	"ecobeehub/internal/entities"
)

// entityIDs hands out unique entity IDs within one platform build
type entityIDs struct {
	domain string
	taken  map[string]bool
}

func newEntityIDs(domain string) *entityIDs {
	return &entityIDs{domain: domain, taken: make(map[string]bool)}
}

// next returns "<domain>.<label>[_<suffix>]". A label with no usable
// characters is replaced by the fallback (a device identifier); a label
// already taken gets the fallback appended, then a counter.
func (ids *entityIDs) next(label, fallback, suffix string) string {
	base := entities.ObjectID(label)
	fallbackID := entities.ObjectID(fallback)
	if base == "" {
		base = fallbackID
	}

	candidate := ids.compose(base, suffix)
	if ids.taken[candidate] && fallbackID != "" && base != fallbackID {
		candidate = ids.compose(base+"_"+fallbackID, suffix)
	}
	for n := 2; ids.taken[candidate]; n++ {
		candidate = ids.compose(base, suffix) + "_" + strconv.Itoa(n)
	}

	ids.taken[candidate] = true
	return candidate
}

func (ids *entityIDs) compose(base, suffix string) string {
	id := base
	if suffix != "" {
		if id != "" {
			id += "_"
		}
		id += suffix
	}
	return ids.domain + "." + id
}
