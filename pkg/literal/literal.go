// Package literal encodes whitelisted value types as document text.
//
// Values of literal-friendly types (numbers, booleans, characters, strings,
// URIs, vectors, quaternions, colors and enums) are written inline into a
// document rather than through the import table. The text forms follow the
// host's conventions:
//
//	bool        True / False
//	int, float  strconv formatting, shortest round-trip for floats
//	float3      [1; 2.5; -3]
//	floatQ      [0; 0; 0; 1]
//	color       [1; 0.5; 0; 1]
//	enum        member name
//
// Go representations: bool, int8/16/32/64, uint8/16/32/64, float32/64, rune for
// char, string, *url.URL for Uri, [Vec] for every vector, quaternion and color
// type, and the member name string for enums.
package literal

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/matzehuels/splice/pkg/typeref"
)

type scalar int

const (
	scalarBool scalar = iota + 1
	scalarInt
	scalarUint
	scalarFloat
	scalarChar
	scalarString
	scalarURI
)

type codec struct {
	kind scalar
	bits int
	// n is the component count for vector-like types, 0 for scalars.
	n int
}

var scalars = map[string]codec{
	"bool":   {kind: scalarBool},
	"sbyte":  {kind: scalarInt, bits: 8},
	"short":  {kind: scalarInt, bits: 16},
	"int":    {kind: scalarInt, bits: 32},
	"long":   {kind: scalarInt, bits: 64},
	"byte":   {kind: scalarUint, bits: 8},
	"ushort": {kind: scalarUint, bits: 16},
	"uint":   {kind: scalarUint, bits: 32},
	"ulong":  {kind: scalarUint, bits: 64},
	"float":  {kind: scalarFloat, bits: 32},
	"double": {kind: scalarFloat, bits: 64},
	"char":   {kind: scalarChar},
	"string": {kind: scalarString},
	"Uri":    {kind: scalarURI},
}

var codecs = buildCodecs()

func buildCodecs() map[string]codec {
	m := make(map[string]codec, len(scalars)+32)
	for name, c := range scalars {
		m[name] = c
	}
	for _, elem := range []string{"bool", "int", "long", "uint", "float", "double"} {
		c := scalars[elem]
		for n := 2; n <= 4; n++ {
			m[elem+strconv.Itoa(n)] = codec{kind: c.kind, bits: c.bits, n: n}
		}
	}
	m["floatQ"] = codec{kind: scalarFloat, bits: 32, n: 4}
	m["doubleQ"] = codec{kind: scalarFloat, bits: 64, n: 4}
	m["color"] = codec{kind: scalarFloat, bits: 32, n: 4}
	m["colorX"] = codec{kind: scalarFloat, bits: 32, n: 4}
	return m
}

// Supported reports whether values of t can be encoded as text.
func Supported(t *typeref.Type) bool {
	if t == nil {
		return false
	}
	if t.IsEnum() {
		return true
	}
	if !t.IsLiteral() || t.IsGeneric() {
		return false
	}
	_, ok := codecs[t.Name()]
	return ok
}

// Names returns the names of all non-enum literal types.
func Names() []string {
	out := make([]string, 0, len(codecs))
	for name := range codecs {
		out = append(out, name)
	}
	return out
}

// Encode renders v, a value of type t, as text.
func Encode(t *typeref.Type, v any) (string, error) {
	if !Supported(t) {
		return "", fmt.Errorf("literal: %s is not a literal type", t)
	}
	if t.IsEnum() {
		s, ok := v.(string)
		if !ok || !isMember(t, s) {
			return "", fmt.Errorf("literal: %v is not a member of %s", v, t)
		}
		return s, nil
	}
	c := codecs[t.Name()]
	if c.n > 0 {
		vec, ok := v.(Vec)
		if !ok || vec.Len != c.n {
			return "", fmt.Errorf("literal: %T is not a %s", v, t)
		}
		parts := make([]string, c.n)
		for i := 0; i < c.n; i++ {
			parts[i] = formatComponent(c, vec.C[i])
		}
		return "[" + strings.Join(parts, "; ") + "]", nil
	}
	return encodeScalar(t, c, v)
}

// Decode parses text produced by [Encode] into a value of type t.
func Decode(t *typeref.Type, s string) (any, error) {
	if !Supported(t) {
		return nil, fmt.Errorf("literal: %s is not a literal type", t)
	}
	if t.IsEnum() {
		return decodeEnum(t, s)
	}
	c := codecs[t.Name()]
	if c.n > 0 {
		return decodeVec(t, c, s)
	}
	return decodeScalar(t, c, s)
}

func encodeScalar(t *typeref.Type, c codec, v any) (string, error) {
	switch c.kind {
	case scalarBool:
		b, ok := v.(bool)
		if !ok {
			break
		}
		return formatBool(b), nil
	case scalarInt:
		n, ok := toInt64(v)
		if !ok {
			break
		}
		return strconv.FormatInt(n, 10), nil
	case scalarUint:
		n, ok := toUint64(v)
		if !ok {
			break
		}
		return strconv.FormatUint(n, 10), nil
	case scalarFloat:
		f, ok := toFloat64(v)
		if !ok {
			break
		}
		return strconv.FormatFloat(f, 'g', -1, c.bits), nil
	case scalarChar:
		r, ok := v.(rune)
		if !ok {
			break
		}
		return string(r), nil
	case scalarString:
		s, ok := v.(string)
		if !ok {
			break
		}
		return s, nil
	case scalarURI:
		switch u := v.(type) {
		case *url.URL:
			if u == nil {
				return "", nil
			}
			return u.String(), nil
		case url.URL:
			return u.String(), nil
		}
	}
	return "", fmt.Errorf("literal: %T is not a %s", v, t)
}

func decodeScalar(t *typeref.Type, c codec, s string) (any, error) {
	switch c.kind {
	case scalarBool:
		return parseBool(s)
	case scalarInt:
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, c.bits)
		if err != nil {
			return nil, fmt.Errorf("literal: %s: %w", t, err)
		}
		switch c.bits {
		case 8:
			return int8(n), nil
		case 16:
			return int16(n), nil
		case 32:
			return int32(n), nil
		}
		return n, nil
	case scalarUint:
		n, err := strconv.ParseUint(strings.TrimSpace(s), 10, c.bits)
		if err != nil {
			return nil, fmt.Errorf("literal: %s: %w", t, err)
		}
		switch c.bits {
		case 8:
			return uint8(n), nil
		case 16:
			return uint16(n), nil
		case 32:
			return uint32(n), nil
		}
		return n, nil
	case scalarFloat:
		f, err := parseFloat(s, c.bits)
		if err != nil {
			return nil, fmt.Errorf("literal: %s: %w", t, err)
		}
		if c.bits == 32 {
			return float32(f), nil
		}
		return f, nil
	case scalarChar:
		r := []rune(s)
		if len(r) != 1 {
			return nil, fmt.Errorf("literal: %s: %q is not a single character", t, s)
		}
		return r[0], nil
	case scalarString:
		return s, nil
	case scalarURI:
		u, err := url.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("literal: %s: %w", t, err)
		}
		return u, nil
	}
	return nil, fmt.Errorf("literal: %s has no decoder", t)
}

func decodeVec(t *typeref.Type, c codec, s string) (any, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("literal: %s: %q is not bracketed", t, s)
	}
	parts := strings.Split(s[1:len(s)-1], ";")
	if len(parts) != c.n {
		return nil, fmt.Errorf("literal: %s: want %d components, got %d", t, c.n, len(parts))
	}
	vec := Vec{Len: c.n}
	for i, p := range parts {
		p = strings.TrimSpace(p)
		var err error
		switch c.kind {
		case scalarBool:
			var b bool
			b, err = parseBool(p)
			if b {
				vec.C[i] = 1
			}
		case scalarInt:
			var n int64
			n, err = strconv.ParseInt(p, 10, c.bits)
			vec.C[i] = float64(n)
		case scalarUint:
			var n uint64
			n, err = strconv.ParseUint(p, 10, c.bits)
			vec.C[i] = float64(n)
		default:
			vec.C[i], err = parseFloat(p, c.bits)
		}
		if err != nil {
			return nil, fmt.Errorf("literal: %s component %d: %w", t, i, err)
		}
	}
	return vec, nil
}

func decodeEnum(t *typeref.Type, s string) (any, error) {
	s = strings.TrimSpace(s)
	for _, m := range t.EnumValues() {
		if m == s {
			return m, nil
		}
	}
	for _, m := range t.EnumValues() {
		if strings.EqualFold(m, s) {
			return m, nil
		}
	}
	return nil, fmt.Errorf("literal: %q is not a member of %s", s, t)
}

func isMember(t *typeref.Type, s string) bool {
	for _, m := range t.EnumValues() {
		if m == s {
			return true
		}
	}
	return false
}

func formatComponent(c codec, f float64) string {
	switch c.kind {
	case scalarBool:
		return formatBool(f != 0)
	case scalarInt:
		return strconv.FormatInt(int64(f), 10)
	case scalarUint:
		return strconv.FormatUint(uint64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, c.bits)
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("literal: %q is not a bool", s)
}

func parseFloat(s string, bits int) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "infinity", "∞":
		return math.Inf(1), nil
	case "-infinity", "-∞":
		return math.Inf(-1), nil
	}
	return strconv.ParseFloat(s, bits)
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

func toUint64(v any) (uint64, bool) {
	switch n := v.(type) {
	case uint:
		return uint64(n), true
	case uint8:
		return uint64(n), true
	case uint16:
		return uint64(n), true
	case uint32:
		return uint64(n), true
	case uint64:
		return n, true
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
