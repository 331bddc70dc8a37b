package scenario

import (
	"encoding/json"
	"strings"
)

// DecodeStatus is the tri-state outcome of a best-effort decode. A response
// that never looked structured is not the same thing as one that looked
// structured and failed to parse, and neither is conflated with a parsed
// null.
type DecodeStatus int

const (
	// DecodeOK means the response parsed into structured data.
	DecodeOK DecodeStatus = iota
	// DecodeNotStructured means the response does not look JSON-like at all.
	DecodeNotStructured
	// DecodeMalformed means the response looked structured but failed to parse.
	DecodeMalformed
)

func (s DecodeStatus) String() string {
	switch s {
	case DecodeOK:
		return "decoded"
	case DecodeNotStructured:
		return "not-structured"
	case DecodeMalformed:
		return "malformed"
	}
	return "unknown"
}

// Decoded holds the result of a best-effort decode of a loosely typed
// textual response. Value is only meaningful when Status is DecodeOK.
type Decoded struct {
	Status DecodeStatus
	Value  any
}

// DecodeLoose attempts to parse a textual backend response into structured
// data. Responses that do not open with a JSON object, array, or quoted
// string are classified as not structured rather than malformed.
func DecodeLoose(s string) Decoded {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Decoded{Status: DecodeNotStructured}
	}
	switch trimmed[0] {
	case '{', '[', '"':
	default:
		if trimmed != "null" && trimmed != "true" && trimmed != "false" && !looksNumeric(trimmed) {
			return Decoded{Status: DecodeNotStructured}
		}
	}
	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return Decoded{Status: DecodeMalformed}
	}
	return Decoded{Status: DecodeOK, Value: v}
}

func looksNumeric(s string) bool {
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '-' && i == 0:
		case r == '.' || r == 'e' || r == 'E' || r == '+':
		default:
			return false
		}
	}
	return true
}
