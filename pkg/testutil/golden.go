// Package testutil provides golden file testing utilities.
package testutil

import (
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var update = flag.Bool("update", false, "update golden files")

// CompareGolden compares actual with the content of the golden file.
// Run the tests with -update to rewrite the golden file instead.
func CompareGolden(t *testing.T, goldenPath string, actual string) {
	t.Helper()

	if *update {
		writeGolden(t, goldenPath, []byte(actual))
		return
	}

	expected := string(readGolden(t, goldenPath))
	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Errorf("Golden file mismatch for %s (-want +got):\n%s", goldenPath, diff)
	}
}

// CompareGoldenSlice compares actual with a golden file holding a JSON array of strings.
// Run the tests with -update to rewrite the golden file instead.
func CompareGoldenSlice(t *testing.T, goldenPath string, actual []string) {
	t.Helper()

	if *update {
		data, err := json.Marshal(actual)
		if err != nil {
			t.Fatalf("Failed to marshal slice to JSON: %v", err)
		}
		writeGolden(t, goldenPath, data)
		return
	}

	var expected []string
	if err := json.Unmarshal(readGolden(t, goldenPath), &expected); err != nil {
		t.Fatalf("Failed to parse JSON from golden file %s: %v", goldenPath, err)
	}

	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Errorf("Golden file mismatch for %s (-want +got):\n%s", goldenPath, diff)
	}
}

func readGolden(t *testing.T, goldenPath string) []byte {
	t.Helper()

	content, err := os.ReadFile(goldenPath)
	if err != nil {
		t.Fatalf("Failed to read golden file %s: %v", goldenPath, err)
	}
	return content
}

func writeGolden(t *testing.T, goldenPath string, data []byte) {
	t.Helper()

	dir := filepath.Dir(goldenPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("Failed to create directory %s: %v", dir, err)
	}
	if err := os.WriteFile(goldenPath, data, 0o644); err != nil {
		t.Fatalf("Failed to update golden file %s: %v", goldenPath, err)
	}
	t.Logf("Updated golden file: %s", goldenPath)
}
