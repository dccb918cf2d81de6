package bsp

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Faultbox/bsplight/pkg/vec"
)

// Entity text lump limits, matching the engine's parser.
const (
	MaxEntityKey   = 64
	MaxEntityValue = 4096
)

// Entity text lump errors.
var (
	ErrEntityNoOpenBrace  = errors.New("expected { to open entity block")
	ErrEntityUnclosed     = errors.New("entity text ended without closing brace")
	ErrEntityKeyTooLong   = errors.New("entity key too long")
	ErrEntityValueTooLong = errors.New("entity value too long")
	ErrEntityBraceValue   = errors.New("closing brace where a value was expected")
)

// KeyValue is one key/value pair of an entity.
type KeyValue struct {
	Key, Value string
}

// EntityDict is the ordered key/value mapping describing one level-editor
// object. Order is preserved for re-serialization.
type EntityDict struct {
	pairs []KeyValue
}

// Get returns the value for key, or "" when absent.
func (d *EntityDict) Get(key string) string {
	for _, p := range d.pairs {
		if p.Key == key {
			return p.Value
		}
	}
	return ""
}

// Has reports whether the key is present.
func (d *EntityDict) Has(key string) bool {
	for _, p := range d.pairs {
		if p.Key == key {
			return true
		}
	}
	return false
}

// Set replaces the value for key, appending the pair if absent.
func (d *EntityDict) Set(key, value string) {
	for i := range d.pairs {
		if d.pairs[i].Key == key {
			d.pairs[i].Value = value
			return
		}
	}
	d.pairs = append(d.pairs, KeyValue{key, value})
}

// Remove deletes the key if present.
func (d *EntityDict) Remove(key string) {
	for i := range d.pairs {
		if d.pairs[i].Key == key {
			d.pairs = append(d.pairs[:i], d.pairs[i+1:]...)
			return
		}
	}
}

// Pairs returns the pairs in insertion order.
func (d *EntityDict) Pairs() []KeyValue {
	return d.pairs
}

// Len returns the number of pairs.
func (d *EntityDict) Len() int {
	return len(d.pairs)
}

// Float returns the value for key parsed as a float, or 0.
func (d *EntityDict) Float(key string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(d.Get(key)), 64)
	if err != nil {
		return 0
	}
	return f
}

// Int returns the value for key parsed as an integer, or 0. Float-valued
// keys are truncated.
func (d *EntityDict) Int(key string) int {
	return int(d.Float(key))
}

// Vec3 returns the value for key parsed as three floats, or the zero
// vector. Missing trailing components stay zero.
func (d *EntityDict) Vec3(key string) vec.Vec3 {
	var v vec.Vec3
	fmt.Sscanf(d.Get(key), "%f %f %f", &v[0], &v[1], &v[2])
	return v
}

// Copy returns an independent copy of the dict.
func (d *EntityDict) Copy() EntityDict {
	pairs := make([]KeyValue, len(d.pairs))
	copy(pairs, d.pairs)
	return EntityDict{pairs: pairs}
}

// ParseEntities parses the entity text lump into ordered dicts. Malformed
// text (missing braces, oversized keys or values) is a fatal error.
func ParseEntities(text string) ([]EntityDict, error) {
	var dicts []EntityDict
	s := scanner{src: text}

	for {
		tok, ok := s.next()
		if !ok {
			return dicts, nil
		}
		if tok != "{" {
			return nil, fmt.Errorf("%w: found %q", ErrEntityNoOpenBrace, tok)
		}

		var dict EntityDict
		for {
			key, ok := s.next()
			if !ok {
				return nil, ErrEntityUnclosed
			}
			if key == "}" {
				break
			}
			if len(key) >= MaxEntityKey {
				return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrEntityKeyTooLong, len(key), MaxEntityKey-1)
			}

			value, ok := s.next()
			if !ok {
				return nil, ErrEntityUnclosed
			}
			if strings.HasPrefix(value, "}") {
				return nil, ErrEntityBraceValue
			}
			if len(value) >= MaxEntityValue {
				return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrEntityValueTooLong, len(value), MaxEntityValue-1)
			}

			dict.Set(key, value)
		}
		dicts = append(dicts, dict)
	}
}

// WriteEntities serializes dicts back into entity text lump form.
func WriteEntities(dicts []EntityDict) string {
	var sb strings.Builder
	for i := range dicts {
		sb.WriteString("{\n")
		for _, p := range dicts[i].Pairs() {
			// Raw quoting: values may carry high-bit "bold" bytes.
			sb.WriteByte('"')
			sb.WriteString(p.Key)
			sb.WriteString(`" "`)
			sb.WriteString(p.Value)
			sb.WriteString("\"\n")
		}
		sb.WriteString("}\n")
	}
	return sb.String()
}

// DecodeEscapes interprets the \b escape, which toggles the engine's
// "bold" text mode by setting the high bit of the following bytes.
func DecodeEscapes(s string) string {
	var sb strings.Builder
	bold := false
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && s[i+1] == 'b' {
			bold = !bold
			i++
			continue
		}
		c := s[i]
		if bold {
			c |= 128
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// scanner tokenizes entity text: braces are single-character tokens,
// quoted strings are one token, // comments run to end of line.
type scanner struct {
	src string
	pos int
}

func (s *scanner) next() (string, bool) {
	// Skip whitespace and comments.
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == '/' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '/' {
			for s.pos < len(s.src) && s.src[s.pos] != '\n' {
				s.pos++
			}
			continue
		}
		if c != ' ' && c != '\t' && c != '\r' && c != '\n' {
			break
		}
		s.pos++
	}
	if s.pos >= len(s.src) {
		return "", false
	}

	c := s.src[s.pos]
	if c == '{' || c == '}' {
		s.pos++
		return string(c), true
	}

	if c == '"' {
		s.pos++
		start := s.pos
		for s.pos < len(s.src) && s.src[s.pos] != '"' {
			s.pos++
		}
		tok := s.src[start:s.pos]
		if s.pos < len(s.src) {
			s.pos++ // closing quote
		}
		return tok, true
	}

	start := s.pos
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '{' || c == '}' || c == '"' {
			break
		}
		s.pos++
	}
	return s.src[start:s.pos], true
}
