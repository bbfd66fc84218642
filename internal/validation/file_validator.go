// Package validation provides filesystem checks for locally configured
// dataset sources before they are handed to the ingestion layer.
package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// supportedExtensions are the table formats the ingestion layer can decode.
var supportedExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
}

// SourceValidator validates local dataset source files.
type SourceValidator struct {
	logger *slog.Logger
}

// NewSourceValidator creates a new source validator
func NewSourceValidator(logger *slog.Logger) *SourceValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &SourceValidator{
		logger: logger,
	}
}

// ValidateSourceFile checks that a local source file exists, is readable,
// and carries a decodable table extension.
func (v *SourceValidator) ValidateSourceFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("Source file does not exist",
			slog.String("file", path))
		return fmt.Errorf("source file does not exist: %w", err)
	}
	if err != nil {
		v.logger.Error("Failed to stat source file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat source file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("Source path is a directory, not a file",
			slog.String("path", path))
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !supportedExtensions[ext] {
		v.logger.Error("Source file has an unsupported extension",
			slog.String("file", path),
			slog.String("extension", ext))
		return fmt.Errorf("source file %s has unsupported extension %q (want .csv or .xlsx)", path, ext)
	}

	// Excel leaves ~$ lock files next to open workbooks
	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") {
		v.logger.Warn("Skipping temporary Excel lock file",
			slog.String("file", path))
		return fmt.Errorf("file %s is a temporary Excel lock file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("Source file is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("source file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("Source file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}
