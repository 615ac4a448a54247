package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// workbookExtensions are the upload formats the loader understands.
var workbookExtensions = map[string]bool{
	".xlsx": true,
	".xls":  true,
	".csv":  true,
}

// FileValidator validates uploaded workbook files before the loader
// touches them
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	// Check if file is readable by opening it
	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateWorkbookName checks the upload filename: a supported extension
// and not an Excel lock file
func (v *FileValidator) ValidateWorkbookName(filename string) error {
	base := filepath.Base(filename)
	if strings.HasPrefix(base, "~$") {
		v.logger.Warn("Rejecting temporary Excel file",
			slog.String("file", filename))
		return fmt.Errorf("file %s is a temporary Excel file", filename)
	}

	ext := strings.ToLower(filepath.Ext(base))
	if !workbookExtensions[ext] {
		v.logger.Error("Unsupported workbook format",
			slog.String("file", filename),
			slog.String("extension", ext))
		return fmt.Errorf("unsupported workbook format %q, expected .xlsx, .xls or .csv", ext)
	}
	return nil
}

// ValidateUploadSize checks the declared upload size against the cap
func (v *FileValidator) ValidateUploadSize(size, maxSize int64) error {
	if size <= 0 {
		return fmt.Errorf("uploaded file is empty")
	}
	if size > maxSize {
		v.logger.Warn("Upload exceeds size limit",
			slog.Int64("size", size),
			slog.Int64("max_size", maxSize))
		return fmt.Errorf("uploaded file is %d bytes, limit is %d", size, maxSize)
	}
	return nil
}

// ValidateWorkbookFile checks an on-disk workbook: exists, readable,
// supported format
func (v *FileValidator) ValidateWorkbookFile(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}
	return v.ValidateWorkbookName(path)
}
