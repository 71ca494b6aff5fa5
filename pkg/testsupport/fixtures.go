package testsupport

import (
	"encoding/json"
	"os"
	"testing"
)

// LoadFixture reads a fixture file relative to the test's package.
func LoadFixture(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// LoadGolden decodes the JSON document at path into v.
func LoadGolden(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// MustLoadGolden is LoadGolden that fails the test on error.
func MustLoadGolden(t testing.TB, path string, v any) {
	t.Helper()
	if err := LoadGolden(path, v); err != nil {
		t.Fatalf("load golden %s: %v", path, err)
	}
}
