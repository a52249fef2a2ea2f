package password

var _ PasswordGenerator = (*MockGenerator)(nil)

// MockGenerator is a PasswordGenerator that returns a fixed result. It is
// useful in tests of code that consumes passwords.
type MockGenerator struct {
	result string
	err    error
}

// NewMockGenerator creates a MockGenerator that always returns result and err.
func NewMockGenerator(result string, err error) *MockGenerator {
	return &MockGenerator{
		result: result,
		err:    err,
	}
}

// Generate returns the mocked result and error.
func (g *MockGenerator) Generate(int, int, int, bool, bool) (string, error) {
	return g.result, g.err
}

// MustGenerate returns the mocked result or panics with the mocked error.
func (g *MockGenerator) MustGenerate(int, int, int, bool, bool) string {
	if g.err != nil {
		panic(g.err)
	}
	return g.result
}
