package validation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestValidateRecordingsDir tests the preflight check on the data directory
func TestValidateRecordingsDir(t *testing.T) {
	tests := []struct {
		name          string
		setup         func(t *testing.T) string
		wantErr       bool
		errorContains string
	}{
		{
			name: "directory with recordings",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				require.NoError(t, os.WriteFile(filepath.Join(dir, "heating.csv"), []byte("x"), 0644))
				require.NoError(t, os.WriteFile(filepath.Join(dir, "cooling.xlsx"), []byte("x"), 0644))
				return dir
			},
		},
		{
			name: "empty directory passes with a warning",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
		},
		{
			name: "lock files are not counted as recordings",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				require.NoError(t, os.WriteFile(filepath.Join(dir, "~$open.xlsx"), []byte("x"), 0644))
				return dir
			},
		},
		{
			name: "missing directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "nope")
			},
			wantErr:       true,
			errorContains: "does not exist",
		},
		{
			name: "path is a file",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				file := filepath.Join(dir, "data.csv")
				require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
				return file
			},
			wantErr:       true,
			errorContains: "not a directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewPathValidator(nil)
			err := v.ValidateRecordingsDir(context.Background(), tt.setup(t))
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestValidateNameTable tests the preflight check on the conversions file
func TestValidateNameTable(t *testing.T) {
	t.Run("readable file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "name_conversions.txt")
		require.NoError(t, os.WriteFile(path, []byte("# names\n"), 0644))
		assert.NoError(t, NewPathValidator(nil).ValidateNameTable(context.Background(), path))
	})

	t.Run("missing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "name_conversions.txt")
		err := NewPathValidator(nil).ValidateNameTable(context.Background(), path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("directory instead of file", func(t *testing.T) {
		err := NewPathValidator(nil).ValidateNameTable(context.Background(), t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "directory")
	})
}

// TestValidateReportDir tests output directory creation and writability
func TestValidateReportDir(t *testing.T) {
	t.Run("existing directory", func(t *testing.T) {
		assert.NoError(t, NewPathValidator(nil).ValidateReportDir(context.Background(), t.TempDir()))
	})

	t.Run("nested directory is created", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "reports", "2026")
		require.NoError(t, NewPathValidator(nil).ValidateReportDir(context.Background(), dir))

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("no leftover marker file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, NewPathValidator(nil).ValidateReportDir(context.Background(), dir))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}
