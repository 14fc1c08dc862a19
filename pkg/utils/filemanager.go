// =============================================================================
// EPICS Archive Config Converter - File Manager Utility
// =============================================================================
//
// This module provides file utilities for the converter, including:
//   - Output file naming (database path to engine config path)
//   - Atomic file writing (no partial output on failure)
//   - File inspection helpers
//
// NAMING STRATEGY:
//   Output files are written alongside the input. A trailing ".db" suffix is
//   replaced, once, by the output suffix; inputs without the suffix get the
//   output suffix appended:
//
//     ioc/motors.db    -> ioc/motors_arch.xml
//     ioc/motors.db.db -> ioc/motors.db_arch.xml
//     ioc/motors.txt   -> ioc/motors.txt_arch.xml
//
// =============================================================================

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// OutputPathFor returns the engine configuration path for a database file.
//
// PARAMETERS:
//   - inputPath: The path to the input database file.
//
// RETURNS:
//   - The output path in the same directory, named per the naming strategy.
func OutputPathFor(inputPath string) string {
	return replaceDBSuffix(inputPath, "_arch.xml")
}

// ReportPathFor returns the inventory workbook path for a database file.
func ReportPathFor(inputPath string) string {
	return replaceDBSuffix(inputPath, "_arch.xlsx")
}

// replaceDBSuffix replaces a single trailing ".db" with the given suffix,
// or appends the suffix when the path does not end in ".db".
func replaceDBSuffix(path, suffix string) string {
	if strings.HasSuffix(path, ".db") {
		return strings.TrimSuffix(path, ".db") + suffix
	}
	return path + suffix
}

// =============================================================================
// ATOMIC FILE WRITING
// =============================================================================

// WriteFileAtomic writes data to a file without ever exposing partial
// content: the data goes to a temporary file in the target directory, which
// is renamed over the destination only after a successful write and sync.
// On failure the temporary file is removed and any existing destination is
// left untouched.
//
// PARAMETERS:
//   - path: The destination path.
//   - data: The full file content.
//   - perm: The file mode for the destination.
//
// RETURNS:
//   - An error if any step fails.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	// CreateTemp opens the file mode 0600; widen it to the requested mode
	// before the rename makes it visible.
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move file into place: %w", err)
	}

	return nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// GetFileSize returns the size of a file in bytes.
func GetFileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// GetFileModTime returns the modification time of a file.
func GetFileModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}
