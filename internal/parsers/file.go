package parsers

import (
	"os"

	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/pkg/errors"
)

// OpenFile opens a CSV file for reading and maps failures onto file errors
func OpenFile(path string) (*os.File, error) {
	if err := CheckFilename(path); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		switch {
		case os.IsNotExist(err):
			return nil, errors.FileError(errors.CodeFileNotFound, path, err)
		case os.IsPermission(err):
			return nil, errors.FileError(errors.CodeFilePermission, path, err)
		default:
			return nil, errors.FileError(errors.CodeFileUnreadable, path, err)
		}
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, errors.FileError(errors.CodeFileUnreadable, path, err)
	}
	if info.IsDir() {
		file.Close()
		return nil, errors.FileError(errors.CodeFileUnreadable, path, nil).
			WithSuggestion("pass a file path, not a directory")
	}

	return file, nil
}
