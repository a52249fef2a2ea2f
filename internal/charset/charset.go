// Package charset resolves named character pools and normalizes custom ones
// before they are handed to the password generator.
package charset

import (
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/lth/passgen/password"
)

const (
	Lower    = password.LowerLetters
	Upper    = password.UpperLetters
	Digits   = password.Digits
	Symbols  = password.Symbols
	Alpha    = Lower + Upper
	AlphaNum = Alpha + Digits
	Hex      = "0123456789abcdef"

	// SafeSymbols need no quoting in a POSIX shell or most config formats.
	SafeSymbols = "!@#$%&*?"

	// Unambiguous sets leave out the look-alikes 0 O I l 1.
	UnambiguousLower  = "abcdefghijkmnopqrstuvwxyz"
	UnambiguousUpper  = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	UnambiguousDigits = "23456789"
)

// Preset is a named pool.
type Preset struct {
	Name  string
	Chars string
}

// Size is the number of distinct characters in the preset.
func (p Preset) Size() int {
	return utf8.RuneCountInString(Normalize(p.Chars))
}

var presets = map[string]string{
	"lower":              Lower,
	"upper":              Upper,
	"digits":             Digits,
	"symbols":            Symbols,
	"alpha":              Alpha,
	"alnum":              AlphaNum,
	"hex":                Hex,
	"safe-symbols":       SafeSymbols,
	"unambiguous-lower":  UnambiguousLower,
	"unambiguous-upper":  UnambiguousUpper,
	"unambiguous-digits": UnambiguousDigits,
}

var aliases = map[string]string{
	"numbers":      "digits",
	"alphanumeric": "alnum",
	"special":      "symbols",
	"safe":         "safe-symbols",
}

// Presets lists every preset sorted by name.
func Presets() []Preset {
	out := make([]Preset, 0, len(presets))
	for name, chars := range presets {
		out = append(out, Preset{Name: name, Chars: chars})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup returns the characters of a preset by name or alias.
func Lookup(name string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliases[key]; ok {
		key = alias
	}
	chars, ok := presets[key]
	return chars, ok
}

// Resolve returns the preset named cs, or cs itself normalized as a literal
// pool. An empty string stays empty so the generator falls back to its
// default.
func Resolve(cs string) string {
	if cs == "" {
		return ""
	}
	if chars, ok := Lookup(cs); ok {
		return chars
	}
	return Normalize(cs)
}

// Normalize converts s to NFC and drops repeated characters, keeping the
// first occurrence of each. Invalid UTF-8 is returned untouched so the
// generator can reject it.
func Normalize(s string) string {
	if !utf8.ValidString(s) {
		return s
	}

	s = norm.NFC.String(s)
	seen := make(map[rune]struct{}, len(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		b.WriteRune(r)
	}
	return b.String()
}
