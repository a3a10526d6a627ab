package fs

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"unicode/utf8"

	"github.com/fwojciec/wikidocu"
)

// utf8BOM is stripped from the start of files so line 1 matches what editors show.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadFile returns the contents of a text file.
// Returns ENOTFOUND if the file does not exist, EINVALID if path is a
// directory, and EUNREADABLE if the file cannot be read or is not UTF-8 text.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", wikidocu.Errorf(wikidocu.ENOTFOUND, "file not found: %s", path)
	case err != nil:
		if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
			return "", wikidocu.Errorf(wikidocu.EINVALID, "is a directory: %s", path)
		}
		return "", wikidocu.Errorf(wikidocu.EUNREADABLE, "read %s: %v", path, err)
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	if IsBinary(data) {
		return "", wikidocu.Errorf(wikidocu.EUNREADABLE, "not a text file: %s", path)
	}
	return string(data), nil
}

// IsBinary reports whether data appears to be binary: invalid UTF-8 or
// containing a NUL byte.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if !utf8.Valid(data) {
		return true
	}
	return bytes.IndexByte(data, 0) >= 0
}
