package conformance

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

// Expectations wraps one scenario's JSON sidecar file. It is queried by
// gjson path rather than unmarshaled into a fixed Go struct, since a
// sidecar's shape varies scenario to scenario (symbol lists, ABI call
// names, exit codes) and a rigid schema would have to grow a field for
// every scenario that wants one more kind of check.
type Expectations struct {
	raw string
}

// LoadExpectations reads and validates a scenario's JSON sidecar.
func LoadExpectations(path string) (*Expectations, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%s: invalid JSON", path)
	}
	return &Expectations{raw: string(data)}, nil
}

// Strings returns the string array at the given gjson path, or nil if the
// path is absent or not an array.
func (e *Expectations) Strings(path string) []string {
	result := gjson.Get(e.raw, path)
	if !result.IsArray() {
		return nil
	}
	var out []string
	for _, v := range result.Array() {
		out = append(out, v.String())
	}
	return out
}

// Int returns the integer at the given gjson path, defaulting to 0 if
// absent.
func (e *Expectations) Int(path string) int {
	return int(gjson.Get(e.raw, path).Int())
}
