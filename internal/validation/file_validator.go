package validation

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// PathValidator checks the filesystem locations of a processing run
// before any heavy work starts: the recordings directory, the
// name-conversions table and the report output directory. Failing fast
// here gives a clear message instead of a mid-pipeline ingest error.
type PathValidator struct {
	logger *slog.Logger
}

// NewPathValidator creates a path validator. A nil logger falls back to
// slog.Default().
func NewPathValidator(logger *slog.Logger) *PathValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &PathValidator{logger: logger}
}

// recordingPatterns lists the logger file extensions the reader loads.
var recordingPatterns = []string{"*.csv", "*.xlsx"}

// ValidateRecordingsDir verifies that the data directory exists and
// reports how many loadable recordings it holds. An empty directory is
// not an error here; discovery fails with its own message later.
func (v *PathValidator) ValidateRecordingsDir(ctx context.Context, dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return fmt.Errorf("recordings directory %s does not exist", dir)
	}
	if err != nil {
		return fmt.Errorf("stat recordings directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	recordings := 0
	locked := 0
	for _, pattern := range recordingPatterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return fmt.Errorf("scan recordings directory %s: %w", dir, err)
		}
		for _, match := range matches {
			// "~$" files are Excel lock files left by an open workbook.
			if strings.HasPrefix(filepath.Base(match), "~$") {
				locked++
				continue
			}
			recordings++
		}
	}
	if locked > 0 {
		v.logger.WarnContext(ctx, "Recordings directory contains open workbook lock files",
			slog.String("directory", dir),
			slog.Int("lock_files", locked))
	}
	if recordings == 0 {
		v.logger.WarnContext(ctx, "No recordings found",
			slog.String("directory", dir))
		return nil
	}

	v.logger.InfoContext(ctx, "Recordings directory validated",
		slog.String("directory", dir),
		slog.Int("recordings", recordings))
	return nil
}

// ValidateNameTable verifies that the name-conversions file exists and
// is readable.
func (v *PathValidator) ValidateNameTable(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("name table %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("stat name table %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a name table", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("name table %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.DebugContext(ctx, "Name table validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateReportDir ensures the output directory exists, creating it if
// needed, and that reports can actually be written into it.
func (v *PathValidator) ValidateReportDir(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create report directory %s: %w", dir, err)
	}

	marker := filepath.Join(dir, ".hpreport_write_check")
	file, err := os.Create(marker)
	if err != nil {
		return fmt.Errorf("report directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(marker)

	v.logger.DebugContext(ctx, "Report directory validated",
		slog.String("directory", dir))
	return nil
}
