// =============================================================================
// EPICS Archive Config Converter - Line Scanner
// =============================================================================
//
// This file provides the line scanner that feeds the database parser. The
// scanner wraps the input as a lazy, finite, non-restartable sequence of raw
// text lines:
//   - Lines are produced in source order with their content untouched
//     (no trimming); line endings are the only thing removed.
//   - End-of-input is signaled distinctly from a blank line: a blank line is
//     a successful Next() with an empty Line().
//   - Read failures surface through Err() after Next() returns false.
//
// USAGE:
//   scanner, err := NewLineScanner(filePath)
//   if err != nil {
//       return err
//   }
//   defer scanner.Close()
//
//   for scanner.Next() {
//       line := scanner.Line()
//       // Process the line...
//   }
//
//   if err := scanner.Err(); err != nil {
//       return err
//   }
//
// =============================================================================

package dbparser

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// LINE SCANNER
// =============================================================================

// LineScanner iterates over the lines of a database file one at a time.
type LineScanner struct {
	file       *os.File
	scanner    *bufio.Scanner
	line       string
	lineNumber int
	err        error
}

// NewLineScanner opens a database file and returns a scanner over its lines.
//
// PARAMETERS:
//   - filePath: The path to the database file.
//
// RETURNS:
//   - A pointer to the LineScanner.
//   - An error if the file cannot be opened.
func NewLineScanner(filePath string) (*LineScanner, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database file: %w", err)
	}

	return &LineScanner{
		file:    file,
		scanner: bufio.NewScanner(file),
	}, nil
}

// NewLineScannerFromReader returns a scanner over the lines of an arbitrary
// reader. Close is a no-op for reader-backed scanners.
func NewLineScannerFromReader(r io.Reader) *LineScanner {
	return &LineScanner{
		scanner: bufio.NewScanner(r),
	}
}

// Next advances to the next line. Returns false at end of input or on a
// read error; the two are distinguished by Err().
func (s *LineScanner) Next() bool {
	if s.err != nil {
		return false
	}

	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			s.err = fmt.Errorf("failed to read line %d: %w", s.lineNumber+1, err)
		}
		return false
	}

	s.line = s.scanner.Text()
	s.lineNumber++

	return true
}

// Line returns the current line without its line ending.
func (s *LineScanner) Line() string {
	return s.line
}

// LineNumber returns the current line number (1-indexed).
func (s *LineScanner) LineNumber() int {
	return s.lineNumber
}

// Err returns any error that occurred while reading.
func (s *LineScanner) Err() error {
	return s.err
}

// Close closes the underlying file, if any.
func (s *LineScanner) Close() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}
