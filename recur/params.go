package recur

import (
	"strconv"
	"strings"

	"github.com/chrond/chrond/errors"
)

// Params is a parsed recurrence parameter map. Each key holds one or more
// integer values; single-valued keys are the common case.
type Params map[string][]int

// ParseParams parses the persisted parameter string of a job.
//
// The format is a `;`-separated list of `key:v1,v2,...` tokens, e.g.
// "interval:15" or "byhour:6;byminute:40". A token that does not contain
// exactly one `:` is silently dropped; this lenient behavior is historical
// and load-bearing for existing job rows. A value that is not an integer
// is a structural violation and fails the whole parse.
func ParseParams(text string) (Params, error) {
	params := Params{}
	if strings.TrimSpace(text) == "" {
		return params, nil
	}

	for _, token := range strings.Split(text, ";") {
		parts := strings.Split(token, ":")
		if len(parts) != 2 {
			// Malformed token: dropped, not rejected.
			continue
		}
		key := strings.TrimSpace(parts[0])
		var values []int
		for _, raw := range strings.Split(parts[1], ",") {
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return nil, errors.Newf("recurrence param %q: invalid integer %q", key, raw)
			}
			values = append(values, n)
		}
		params[key] = values
	}

	return params, nil
}

// Has reports whether the key is present.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Int returns the first value for key, or def when absent.
func (p Params) Int(key string, def int) int {
	if values, ok := p[key]; ok && len(values) > 0 {
		return values[0]
	}
	return def
}

// Values returns all values for key, or nil when absent.
func (p Params) Values(key string) []int {
	return p[key]
}

// contains reports whether v is in the key's value set. An absent key
// matches everything (no restriction).
func (p Params) contains(key string, v int) bool {
	values, ok := p[key]
	if !ok {
		return true
	}
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
