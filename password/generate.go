// Package password generates random passwords from configurable character
// pools using a cryptographically secure random source.
//
// Every character is drawn uniformly from its pool and inserted at a uniformly
// random position of the password built so far, so character classes are
// spread across the result rather than appended in blocks.
package password

import (
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

const (
	// LowerLetters is the list of lowercase letters.
	LowerLetters = "abcdefghijklmnopqrstuvwxyz"

	// UpperLetters is the list of uppercase letters.
	UpperLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// Digits is the list of permitted digits.
	Digits = "0123456789"

	// Symbols is the list of symbols.
	Symbols = "~!@#$%^&*()_+`-={}|[]\\:\"<>?,./"
)

// PasswordGenerator is implemented by anything that can produce passwords.
// Callers that only need passwords should accept this interface so a
// MockGenerator can be substituted in tests.
type PasswordGenerator interface {
	Generate(length, numDigits, numSymbols int, noUpper, allowRepeat bool) (string, error)
}

// GeneratorInput customizes a Generator. Empty fields fall back to the
// package defaults.
type GeneratorInput struct {
	LowerLetters string
	UpperLetters string
	Digits       string
	Symbols      string

	// Source supplies randomness. Defaults to crypto/rand.
	Source RandomSource
}

// Generator produces passwords from a fixed set of pools. It holds no mutable
// state and is safe for concurrent use.
type Generator struct {
	lowerLetters []rune
	upperLetters []rune
	letters      []rune
	digits       []rune
	symbols      []rune
	source       RandomSource
}

var _ PasswordGenerator = (*Generator)(nil)

// NewGenerator creates a Generator from i. A nil input uses all defaults.
func NewGenerator(i *GeneratorInput) (*Generator, error) {
	if i == nil {
		i = new(GeneratorInput)
	}

	g := &Generator{source: i.Source}
	if g.source == nil {
		g.source = NewCryptoSource(nil)
	}

	var err error
	if g.lowerLetters, err = newPool(i.LowerLetters, LowerLetters); err != nil {
		return nil, errors.Wrap(err, "lower letters")
	}
	if g.upperLetters, err = newPool(i.UpperLetters, UpperLetters); err != nil {
		return nil, errors.Wrap(err, "upper letters")
	}
	if g.digits, err = newPool(i.Digits, Digits); err != nil {
		return nil, errors.Wrap(err, "digits")
	}
	if g.symbols, err = newPool(i.Symbols, Symbols); err != nil {
		return nil, errors.Wrap(err, "symbols")
	}
	g.letters = dedupe(append(append([]rune{}, g.lowerLetters...), g.upperLetters...))

	return g, nil
}

// Generate generates a password with the given requirements. length is the
// total number of characters in the password. numDigits is the number of
// digits to include in the result. numSymbols is the number of symbols to
// include in the result. noUpper excludes uppercase letters from the results.
// allowRepeat allows characters to repeat.
//
// The algorithm favors entropy over speed.
func (g *Generator) Generate(length, numDigits, numSymbols int, noUpper, allowRepeat bool) (string, error) {
	if length < 0 || numDigits < 0 || numSymbols < 0 {
		return "", ErrNegativeCount
	}

	letters := g.letters
	if noUpper {
		letters = g.lowerLetters
	}

	if numDigits > length || numSymbols > length-numDigits {
		return "", ErrExceedsTotalLength
	}
	chars := length - numDigits - numSymbols

	if !allowRepeat && chars > len(letters) {
		return "", ErrLettersExceedsAvailable
	}
	if !allowRepeat && numDigits > len(g.digits) {
		return "", ErrDigitsExceedsAvailable
	}
	if !allowRepeat && numSymbols > len(g.symbols) {
		return "", ErrSymbolsExceedsAvailable
	}

	d := drawer{source: g.source, result: make([]rune, 0, length)}
	if !allowRepeat {
		d.used = make(map[rune]struct{}, length)
	}

	if err := d.draw(letters, chars, ErrLettersExceedsAvailable); err != nil {
		return "", err
	}
	if err := d.draw(g.digits, numDigits, ErrDigitsExceedsAvailable); err != nil {
		return "", err
	}
	if err := d.draw(g.symbols, numSymbols, ErrSymbolsExceedsAvailable); err != nil {
		return "", err
	}

	return string(d.result), nil
}

// drawer carries the in-progress result of a single Generate call.
type drawer struct {
	source RandomSource
	result []rune
	used   map[rune]struct{} // nil when repeats are allowed
}

// draw adds n characters from pool. When repeats are disallowed, characters
// already in the result are redrawn; the redraw loop only starts once the
// pool is known to hold at least n unused characters.
func (d *drawer) draw(pool []rune, n int, exhausted error) error {
	if n == 0 {
		return nil
	}

	if d.used != nil {
		unused := len(pool)
		for _, r := range pool {
			if _, ok := d.used[r]; ok {
				unused--
			}
		}
		// Pools can overlap across classes, so earlier classes may have
		// consumed characters this one needs.
		if unused < n {
			return exhausted
		}
	}

	for i := 0; i < n; {
		r, err := randomElement(d.source, pool)
		if err != nil {
			return err
		}

		if d.used != nil {
			if _, ok := d.used[r]; ok {
				continue
			}
			d.used[r] = struct{}{}
		}

		if d.result, err = randomInsert(d.source, d.result, r); err != nil {
			return err
		}
		i++
	}
	return nil
}

// Generate is the package shortcut for Generator.Generate.
func Generate(length, numDigits, numSymbols int, noUpper, allowRepeat bool) (string, error) {
	gen, err := NewGenerator(nil)
	if err != nil {
		return "", err
	}
	return gen.Generate(length, numDigits, numSymbols, noUpper, allowRepeat)
}

// MustGenerate is the same as Generate, but panics on error.
func MustGenerate(length, numDigits, numSymbols int, noUpper, allowRepeat bool) string {
	res, err := Generate(length, numDigits, numSymbols, noUpper, allowRepeat)
	if err != nil {
		panic(err)
	}
	return res
}

// randomInsert inserts r at a uniformly random position in s, including the
// front and the back.
func randomInsert(src RandomSource, s []rune, r rune) ([]rune, error) {
	if len(s) == 0 {
		return append(s, r), nil
	}

	n, err := src.Intn(len(s) + 1)
	if err != nil {
		return nil, err
	}

	s = append(s, 0)
	copy(s[n+1:], s[n:])
	s[n] = r
	return s, nil
}

// randomElement returns a uniformly random element of pool.
func randomElement(src RandomSource, pool []rune) (rune, error) {
	n, err := src.Intn(len(pool))
	if err != nil {
		return 0, err
	}
	return pool[n], nil
}

func newPool(s, fallback string) ([]rune, error) {
	if s == "" {
		s = fallback
	}
	if !utf8.ValidString(s) {
		return nil, ErrInvalidPool
	}
	return dedupe([]rune(s)), nil
}

// dedupe drops repeated runes in place, keeping first occurrences in order.
func dedupe(rs []rune) []rune {
	seen := make(map[rune]struct{}, len(rs))
	out := rs[:0]
	for _, r := range rs {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
