package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

var nullLiteral = []byte("null")

// FlexString decodes a JSON string, number or list of names into a plain
// string. The upstream payload is not consistent about which it sends for
// ids, zip codes and dates. Anything else decodes to "".
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, nullLiteral) {
		*s = ""
		return nil
	}

	switch b[0] {
	case '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = FlexString(v)
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(b, &items); err != nil {
			*s = ""
			return nil
		}
		parts := make([]string, 0, len(items))
		for _, item := range items {
			var part FlexString
			if bytes.HasPrefix(bytes.TrimSpace(item), []byte("{")) {
				var named struct {
					Name FlexString `json:"name"`
				}
				if err := json.Unmarshal(item, &named); err == nil {
					part = named.Name
				}
			} else if err := part.UnmarshalJSON(item); err != nil {
				continue
			}
			if part != "" {
				parts = append(parts, string(part))
			}
		}
		*s = FlexString(strings.Join(parts, ", "))
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		*s = FlexString(b)
	default:
		*s = ""
	}
	return nil
}

func (s FlexString) String() string { return string(s) }

// FlexFloat is an optional number. Valid is false when the field was
// absent, null, or not parseable as a number.
type FlexFloat struct {
	Value float64
	Valid bool
}

// Float returns a valid FlexFloat holding v.
func Float(v float64) FlexFloat {
	return FlexFloat{Value: v, Valid: true}
}

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	*f = FlexFloat{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, nullLiteral) {
		return nil
	}

	switch b[0] {
	case '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return nil
		}
		v = strings.ReplaceAll(strings.TrimSpace(v), ",", "")
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			*f = Float(n)
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n float64
		if err := json.Unmarshal(b, &n); err == nil {
			*f = Float(n)
		}
	}
	return nil
}

func (f FlexFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return nullLiteral, nil
	}
	return json.Marshal(f.Value)
}

// Or returns the value, or def when it is absent or zero.
func (f FlexFloat) Or(def float64) float64 {
	if !f.Valid || f.Value == 0 {
		return def
	}
	return f.Value
}

// Int truncates the value to an int, returning 0 when absent.
func (f FlexFloat) Int() int {
	if !f.Valid {
		return 0
	}
	return int(f.Value)
}

// PhotoRef is a photo reference that arrives either as {"href": "..."}
// or as a bare URL string.
type PhotoRef struct {
	Href string
}

func (p *PhotoRef) UnmarshalJSON(b []byte) error {
	*p = PhotoRef{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}

	switch b[0] {
	case '"':
		return json.Unmarshal(b, &p.Href)
	case '{':
		var obj struct {
			Href string `json:"href"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return nil
		}
		p.Href = obj.Href
	}
	return nil
}

func (p PhotoRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"href": p.Href})
}
