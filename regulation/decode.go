package regulation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var codeFenceRe = regexp.MustCompile("(?s)^```[A-Za-z0-9_-]*\\s*\\n?(.*?)\\n?\\s*```$")

// Field is a decoded JSON member that remembers whether its key was
// present and whether its value was null.
type Field[T any] struct {
	Present bool
	Null    bool
	Value   T
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Null = true
		return nil
	}
	return json.Unmarshal(data, &f.Value)
}

// Set reports whether the key was present with a non-null value.
func (f Field[T]) Set() bool {
	return f.Present && !f.Null
}

// Number is a float that also decodes from a numeric string.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = Number(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("number: unsupported value %s", data)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("number: %q is not numeric", s)
	}
	*n = Number(f)
	return nil
}

// RuleResponse is one rule object as the model wrote it.
type RuleResponse struct {
	MinValue Field[Number]
	MaxValue Field[Number]
	Unit     Field[string]
	Source   Field[string]
	FullText Field[string]
}

// Response is the decoded model completion. Rules only holds slots whose
// value was a non-empty object.
type Response struct {
	RegulationName string
	RegulationCode string
	Rules          map[RuleKey]*RuleResponse
}

// StripCodeFence removes a surrounding Markdown code fence, if any.
func StripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if m := codeFenceRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}

// DecodeResponse parses a completion body. Any syntax or shape problem is
// reported as ErrInvalidResponse.
func DecodeResponse(raw string) (*Response, error) {
	body := []byte(StripCodeFence(raw))
	if !json.Valid(body) {
		var v any
		err := json.Unmarshal(body, &v)
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	if err := ValidateResponseSchema(body); err != nil {
		return nil, err
	}

	var members map[string]json.RawMessage
	if err := json.Unmarshal(body, &members); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	var name, code Field[string]
	if err := decodeMember(members, "regulation_name", &name); err != nil {
		return nil, fmt.Errorf("%w: regulation_name: %w", ErrInvalidResponse, err)
	}
	if err := decodeMember(members, "regulation_code", &code); err != nil {
		return nil, fmt.Errorf("%w: regulation_code: %w", ErrInvalidResponse, err)
	}
	resp := &Response{
		RegulationName: name.Value,
		RegulationCode: code.Value,
		Rules:          make(map[RuleKey]*RuleResponse),
	}

	for _, key := range RuleKeys() {
		rule, err := decodeRule(members[string(key)])
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidResponse, key, err)
		}
		if rule != nil {
			resp.Rules[key] = rule
		}
	}
	return resp, nil
}

// decodeRule returns nil for a missing, null or empty object.
func decodeRule(raw json.RawMessage) (*RuleResponse, error) {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}

	var members map[string]json.RawMessage
	if err := json.Unmarshal(raw, &members); err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}

	var rule RuleResponse
	fields := []struct {
		key string
		dst json.Unmarshaler
	}{
		{"min_value", &rule.MinValue},
		{"max_value", &rule.MaxValue},
		{"unit", &rule.Unit},
		{"source", &rule.Source},
		{"full_text", &rule.FullText},
	}
	for _, f := range fields {
		if err := decodeMember(members, f.key, f.dst); err != nil {
			return nil, fmt.Errorf("%s: %w", f.key, err)
		}
	}
	return &rule, nil
}

// decodeMember decodes members[key] into dst. Keys match exactly, unlike
// encoding/json struct fields, so every member of a reply is looked up the
// same way.
func decodeMember(members map[string]json.RawMessage, key string, dst json.Unmarshaler) error {
	raw, ok := members[key]
	if !ok {
		return nil
	}
	return dst.UnmarshalJSON(raw)
}
