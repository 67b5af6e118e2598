package schema

import (
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// Numbers decode as json.Number so large integers keep their digits.
var jsonAPI = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

// Decode parses raw JSON into the generic value tree the validator accepts.
// Syntax errors are returned as *ParseError.
func Decode(data []byte) (any, error) {
	var v any
	if err := jsonAPI.Unmarshal(data, &v); err != nil {
		return nil, &ParseError{Err: err}
	}
	return v, nil
}

// JoinPointer appends a reference token to a JSON pointer, escaping it per RFC 6901.
func JoinPointer(base, token string) string {
	token = strings.ReplaceAll(token, "~", "~0")
	token = strings.ReplaceAll(token, "/", "~1")
	return base + "/" + token
}
