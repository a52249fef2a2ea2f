package password

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"testing/iotest"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const N = 500

func TestGenerator_Generate_Custom(t *testing.T) {
	gen, err := NewGenerator(&GeneratorInput{
		LowerLetters: "abcde",
		UpperLetters: "ABCDE",
		Symbols:      "!@#$%",
		Digits:       "01234",
	})
	require.NoError(t, err)

	for i := 0; i < N; i++ {
		res, err := gen.Generate(52, 10, 10, false, true)
		require.NoError(t, err)

		assert.NotContains(t, res, "f", "%q should only contain lower letters abcde", res)
		assert.NotContains(t, res, "F", "%q should only contain upper letters ABCDE", res)
		assert.NotContains(t, res, "&", "%q should only contain symbols !@#$%%", res)
		assert.NotContains(t, res, "5", "%q should only contain digits 01234", res)
	}
}

func TestGenerator_Generate_Errors(t *testing.T) {
	gen, err := NewGenerator(nil)
	require.NoError(t, err)

	tests := []struct {
		name                          string
		length, numDigits, numSymbols int
		noUpper                       bool
		want                          error
	}{
		{"digits exceed total length", 0, 1, 0, false, ErrExceedsTotalLength},
		{"symbols exceed total length", 0, 0, 1, false, ErrExceedsTotalLength},
		{"digits and symbols exceed total length", 10, 6, 5, false, ErrExceedsTotalLength},
		{"letters exceed available", 1000, 0, 0, false, ErrLettersExceedsAvailable},
		{"lowercase letters exceed available", 27, 0, 0, true, ErrLettersExceedsAvailable},
		{"digits exceed available", 52, 11, 0, false, ErrDigitsExceedsAvailable},
		{"symbols exceed available", 52, 0, 31, false, ErrSymbolsExceedsAvailable},
		{"negative length", -1, 0, 0, false, ErrNegativeCount},
		{"negative digits", 10, -1, 0, false, ErrNegativeCount},
		{"negative symbols", 10, 0, -1, false, ErrNegativeCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := gen.Generate(tt.length, tt.numDigits, tt.numSymbols, tt.noUpper, false)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, res)
		})
	}
}

func TestGenerator_Generate_ExceedsLengthWithoutOverflow(t *testing.T) {
	gen, err := NewGenerator(nil)
	require.NoError(t, err)

	maxInt := int(^uint(0) >> 1)
	_, err = gen.Generate(10, maxInt, maxInt, false, true)
	assert.ErrorIs(t, err, ErrExceedsTotalLength)
}

func TestGenerator_Generate_RepeatLiftsAvailability(t *testing.T) {
	gen, err := NewGenerator(nil)
	require.NoError(t, err)

	res, err := gen.Generate(1000, 100, 100, false, true)
	require.NoError(t, err)
	assert.Len(t, []rune(res), 1000)
}

func TestGenerator_Generate_Lowercase(t *testing.T) {
	gen, err := NewGenerator(nil)
	require.NoError(t, err)

	for i := 0; i < N; i++ {
		res, err := gen.Generate(i%len(LowerLetters), 0, 0, true, true)
		require.NoError(t, err)
		assert.Equal(t, strings.ToLower(res), res, "%q is not lowercase", res)
	}
}

func TestGenerator_Generate_Uppercase(t *testing.T) {
	gen, err := NewGenerator(nil)
	require.NoError(t, err)

	for i := 0; i < N; i++ {
		res, err := gen.Generate(1000, 0, 0, false, true)
		require.NoError(t, err)
		assert.True(t, strings.ContainsAny(res, UpperLetters), "%q does not include uppercase", res)
	}
}

func TestGenerator_Generate_NoRepeat(t *testing.T) {
	gen, err := NewGenerator(nil)
	require.NoError(t, err)

	for i := 0; i < N; i++ {
		length := i % 71
		digits := i % 11
		if digits > length {
			digits = length
		}
		symbols := 0
		if length-digits > 52 {
			symbols = length - digits - 52
		}

		res, err := gen.Generate(length, digits, symbols, false, false)
		require.NoError(t, err, "length=%d digits=%d symbols=%d", length, digits, symbols)
		require.Len(t, res, length)

		seen := make(map[rune]bool, length)
		for _, r := range res {
			require.False(t, seen[r], "%q contains %q more than once", res, r)
			seen[r] = true
		}
	}
}

func TestGenerator_Generate_ClassCounts(t *testing.T) {
	gen, err := NewGenerator(nil)
	require.NoError(t, err)

	for i := 0; i < N; i++ {
		res, err := gen.Generate(40, 7, 5, false, false)
		require.NoError(t, err)

		var letters, digits, symbols int
		for _, r := range res {
			switch {
			case strings.ContainsRune(Digits, r):
				digits++
			case strings.ContainsRune(Symbols, r):
				symbols++
			case unicode.IsLetter(r):
				letters++
			}
		}
		assert.Equal(t, 28, letters)
		assert.Equal(t, 7, digits)
		assert.Equal(t, 5, symbols)
	}
}

func TestGenerator_Generate_DigitsNotClustered(t *testing.T) {
	gen, err := NewGenerator(nil)
	require.NoError(t, err)

	// A digit at the front means it was not simply appended after the letters.
	leading := 0
	for i := 0; i < N; i++ {
		res, err := gen.Generate(20, 10, 0, false, false)
		require.NoError(t, err)
		if strings.ContainsRune(Digits, rune(res[0])) {
			leading++
		}
	}
	assert.Greater(t, leading, 0)
	assert.Less(t, leading, N)
}

func TestGenerator_Generate_NotDeterministic(t *testing.T) {
	gen, err := NewGenerator(nil)
	require.NoError(t, err)

	a, err := gen.Generate(64, 10, 10, false, false)
	require.NoError(t, err)
	b, err := gen.Generate(64, 10, 10, false, false)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestGenerator_Generate_Pinned(t *testing.T) {
	// letters=[a b C D]: draw C, insert alone; draw C again (redraw), draw a,
	// insert at 0; draw 1, insert at 1; draw !, insert at 3.
	src := NewSequenceSource(2, 2, 0, 0, 1, 1, 0, 3)
	gen, err := NewGenerator(&GeneratorInput{
		LowerLetters: "ab",
		UpperLetters: "CD",
		Digits:       "01",
		Symbols:      "!?",
		Source:       src,
	})
	require.NoError(t, err)

	res, err := gen.Generate(4, 1, 1, false, false)
	require.NoError(t, err)
	assert.Equal(t, "a1C!", res)
	assert.Equal(t, 8, src.Draws())
}

func TestGenerator_Generate_OverlappingPoolsTerminate(t *testing.T) {
	gen, err := NewGenerator(&GeneratorInput{
		LowerLetters: "ab",
		Digits:       "ab",
	})
	require.NoError(t, err)

	for i := 0; i < N; i++ {
		_, err := gen.Generate(3, 1, 0, true, false)
		require.ErrorIs(t, err, ErrDigitsExceedsAvailable)
	}
}

func TestGenerator_Generate_SmallPoolExhausted(t *testing.T) {
	gen, err := NewGenerator(&GeneratorInput{
		LowerLetters: "x",
		Digits:       "7",
		Symbols:      "!",
	})
	require.NoError(t, err)

	for i := 0; i < N; i++ {
		res, err := gen.Generate(3, 1, 1, true, false)
		require.NoError(t, err)
		assert.ElementsMatch(t, []rune("x7!"), []rune(res))
	}

	_, err = gen.Generate(4, 1, 1, true, false)
	assert.ErrorIs(t, err, ErrLettersExceedsAvailable)
}

func TestGenerator_Generate_DuplicatePoolCharacters(t *testing.T) {
	gen, err := NewGenerator(&GeneratorInput{LowerLetters: "aab"})
	require.NoError(t, err)

	res, err := gen.Generate(2, 0, 0, true, false)
	require.NoError(t, err)
	assert.ElementsMatch(t, []rune("ab"), []rune(res))

	_, err = gen.Generate(3, 0, 0, true, false)
	assert.ErrorIs(t, err, ErrLettersExceedsAvailable)
}

func TestGenerator_Generate_MultiByte(t *testing.T) {
	gen, err := NewGenerator(&GeneratorInput{
		LowerLetters: "äöüß",
		UpperLetters: "ÄÖÜ",
		Digits:       "٠١٢٣",
		Symbols:      "§€",
	})
	require.NoError(t, err)

	for i := 0; i < N; i++ {
		res, err := gen.Generate(9, 2, 1, false, false)
		require.NoError(t, err)

		runes := []rune(res)
		assert.Len(t, runes, 9)
		for _, r := range runes {
			assert.True(t, strings.ContainsRune("äöüßÄÖÜ٠١٢٣§€", r), "%q contains foreign rune %q", res, r)
		}
	}
}

func TestGenerator_Generate_EntropyFailure(t *testing.T) {
	errBoom := errors.New("entropy pool unavailable")
	gen, err := NewGenerator(&GeneratorInput{Source: NewCryptoSource(iotest.ErrReader(errBoom))})
	require.NoError(t, err)

	res, err := gen.Generate(10, 2, 2, false, false)
	assert.ErrorIs(t, err, ErrEntropy)
	assert.ErrorIs(t, err, errBoom)
	assert.Empty(t, res)
}

func TestGenerator_Generate_RangeFailure(t *testing.T) {
	gen, err := NewGenerator(&GeneratorInput{Source: NewSequenceSource(0, 99)})
	require.NoError(t, err)

	_, err = gen.Generate(5, 0, 0, false, true)
	assert.ErrorIs(t, err, ErrRange)
}

func TestGenerator_Generate_Concurrent(t *testing.T) {
	gen, err := NewGenerator(nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				if _, err := gen.Generate(32, 5, 5, false, false); err != nil {
					errs <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestNewGenerator_InvalidPool(t *testing.T) {
	_, err := NewGenerator(&GeneratorInput{Symbols: "\xff\xfe"})
	assert.ErrorIs(t, err, ErrInvalidPool)
}

func TestGenerate(t *testing.T) {
	res, err := Generate(64, 10, 10, false, false)
	require.NoError(t, err)
	assert.Len(t, res, 64)

	_, err = Generate(0, 1, 0, false, false)
	assert.ErrorIs(t, err, ErrExceedsTotalLength)
}

func TestMustGenerate(t *testing.T) {
	assert.Len(t, MustGenerate(16, 4, 4, false, false), 16)
	assert.Panics(t, func() { MustGenerate(0, 1, 0, false, false) })
}

func TestRandomInsert(t *testing.T) {
	tests := []struct {
		pos  int
		want string
	}{
		{0, "Xabc"},
		{1, "aXbc"},
		{2, "abXc"},
		{3, "abcX"},
	}

	for _, tt := range tests {
		src := NewSequenceSource(tt.pos)
		got, err := randomInsert(src, []rune("abc"), 'X')
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(got))
	}
}

func TestRandomInsert_Empty(t *testing.T) {
	src := NewSequenceSource()
	got, err := randomInsert(src, nil, 'é')
	require.NoError(t, err)
	assert.Equal(t, "é", string(got))
	assert.Zero(t, src.Draws())
}

func TestRandomInsert_MultiByte(t *testing.T) {
	got, err := randomInsert(NewSequenceSource(1), []rune("日本"), '語')
	require.NoError(t, err)
	assert.Equal(t, "日語本", string(got))
}

func TestRandomInsert_AllPositionsReachable(t *testing.T) {
	src := NewCryptoSource(nil)
	seen := make(map[int]bool)
	for i := 0; i < N; i++ {
		got, err := randomInsert(src, []rune("abc"), 'X')
		require.NoError(t, err)
		seen[strings.IndexRune(string(got), 'X')] = true
	}
	assert.Len(t, seen, 4)
}

func TestRandomElement(t *testing.T) {
	pool := []rune("αβγ")
	for i, want := range pool {
		got, err := randomElement(NewSequenceSource(i), pool)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func BenchmarkGenerator_Generate(b *testing.B) {
	gen, err := NewGenerator(nil)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := gen.Generate(64, 10, 10, false, false); err != nil {
			b.Fatal(err)
		}
	}
}
