package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileValidator_ValidateFile(t *testing.T) {
	tests := []struct {
		name          string
		setupFunc     func(t *testing.T) string
		wantErr       bool
		errorContains string
	}{
		{
			name: "existing readable file",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "book.xlsx")
				require.NoError(t, os.WriteFile(path, []byte("data"), 0644))
				return path
			},
			wantErr: false,
		},
		{
			name: "missing file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing.xlsx")
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
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewFileValidator(nil)
			path := tt.setupFunc(t)

			err := v.ValidateFile(path)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFileValidator_ValidateWorkbookName(t *testing.T) {
	tests := []struct {
		name          string
		filename      string
		wantErr       bool
		errorContains string
	}{
		{name: "xlsx accepted", filename: "statements.xlsx", wantErr: false},
		{name: "xls accepted", filename: "statements.xls", wantErr: false},
		{name: "csv accepted", filename: "statements.csv", wantErr: false},
		{name: "uppercase extension accepted", filename: "STATEMENTS.XLSX", wantErr: false},
		{name: "full path accepted", filename: "/uploads/2026/statements.csv", wantErr: false},
		{
			name:          "excel lock file rejected",
			filename:      "~$statements.xlsx",
			wantErr:       true,
			errorContains: "temporary Excel file",
		},
		{
			name:          "pdf rejected",
			filename:      "statements.pdf",
			wantErr:       true,
			errorContains: "unsupported workbook format",
		},
		{
			name:          "no extension rejected",
			filename:      "statements",
			wantErr:       true,
			errorContains: "unsupported workbook format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewFileValidator(nil)

			err := v.ValidateWorkbookName(tt.filename)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFileValidator_ValidateUploadSize(t *testing.T) {
	v := NewFileValidator(nil)

	assert.NoError(t, v.ValidateUploadSize(1024, 10240))
	assert.NoError(t, v.ValidateUploadSize(10240, 10240))

	err := v.ValidateUploadSize(0, 10240)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")

	err = v.ValidateUploadSize(10241, 10240)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit is 10240")
}

func TestFileValidator_ValidateWorkbookFile(t *testing.T) {
	v := NewFileValidator(nil)
	dir := t.TempDir()

	good := filepath.Join(dir, "book.csv")
	require.NoError(t, os.WriteFile(good, []byte("a,b\n"), 0644))
	assert.NoError(t, v.ValidateWorkbookFile(good))

	wrongExt := filepath.Join(dir, "book.txt")
	require.NoError(t, os.WriteFile(wrongExt, []byte("a,b\n"), 0644))
	err := v.ValidateWorkbookFile(wrongExt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported workbook format")

	err = v.ValidateWorkbookFile(filepath.Join(dir, "missing.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}
