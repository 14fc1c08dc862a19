package dbparser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineScannerFromReader(t *testing.T) {
	input := "first\n\nthird line\n"
	scanner := NewLineScannerFromReader(strings.NewReader(input))
	defer scanner.Close()

	var lines []string
	var numbers []int
	for scanner.Next() {
		lines = append(lines, scanner.Line())
		numbers = append(numbers, scanner.LineNumber())
	}

	require.NoError(t, scanner.Err())
	assert.Equal(t, []string{"first", "", "third line"}, lines)
	assert.Equal(t, []int{1, 2, 3}, numbers)
}

func TestLineScannerPreservesLeadingWhitespace(t *testing.T) {
	scanner := NewLineScannerFromReader(strings.NewReader("\tindented\n  spaced"))
	defer scanner.Close()

	require.True(t, scanner.Next())
	assert.Equal(t, "\tindented", scanner.Line())
	require.True(t, scanner.Next())
	assert.Equal(t, "  spaced", scanner.Line())
	assert.False(t, scanner.Next())
	assert.NoError(t, scanner.Err())
}

func TestLineScannerMissingFile(t *testing.T) {
	scanner, err := NewLineScanner(filepath.Join(t.TempDir(), "does-not-exist.db"))
	require.Error(t, err)
	assert.Nil(t, scanner)
	assert.Contains(t, err.Error(), "failed to open database file")
}

func TestLineScannerFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.db")
	require.NoError(t, os.WriteFile(path, []byte("record(ai, \"X\")\n{\n}\n"), 0644))

	scanner, err := NewLineScanner(path)
	require.NoError(t, err)
	defer scanner.Close()

	count := 0
	for scanner.Next() {
		count++
	}

	require.NoError(t, scanner.Err())
	assert.Equal(t, 3, count)
	assert.Equal(t, 3, scanner.LineNumber())
}
