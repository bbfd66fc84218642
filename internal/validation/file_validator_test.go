package validation

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator() *SourceValidator {
	return NewSourceValidator(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestValidateSourceFile(t *testing.T) {
	tests := []struct {
		name          string
		setupFunc     func(t *testing.T) string
		wantErr       bool
		errorContains string
	}{
		{
			name: "valid csv file",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "clinics.csv")
				require.NoError(t, os.WriteFile(path, []byte("Year\n1847\n"), 0o644))
				return path
			},
		},
		{
			name: "valid xlsx extension",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "clinics.xlsx")
				require.NoError(t, os.WriteFile(path, []byte("stub"), 0o644))
				return path
			},
		},
		{
			name: "missing file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "nope.csv")
			},
			wantErr:       true,
			errorContains: "does not exist",
		},
		{
			name: "directory instead of file",
			setupFunc: func(t *testing.T) string {
				return t.TempDir()
			},
			wantErr:       true,
			errorContains: "is a directory",
		},
		{
			name: "unsupported extension",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "clinics.json")
				require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
				return path
			},
			wantErr:       true,
			errorContains: "unsupported extension",
		},
		{
			name: "excel lock file",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "~$clinics.xlsx")
				require.NoError(t, os.WriteFile(path, []byte("lock"), 0o644))
				return path
			},
			wantErr:       true,
			errorContains: "temporary Excel lock file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newTestValidator().ValidateSourceFile(tt.setupFunc(t))
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestValidateSourceFileMissingWrapsNotExist(t *testing.T) {
	err := newTestValidator().ValidateSourceFile(filepath.Join(t.TempDir(), "gone.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
