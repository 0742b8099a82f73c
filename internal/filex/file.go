// Package filex holds small filesystem helpers for the CLI.
package filex

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// MaxPictureSize matches the server's limit on decoded pictures.
const MaxPictureSize = 2 << 20

var ErrNotAnImage = errors.New("not an image")

// EnsureParentDir creates the directory that will hold path.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// ReadDataURI loads an image file and encodes it as a data:<mime>;base64 URI.
func ReadDataURI(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.Size() > MaxPictureSize {
		return "", fmt.Errorf("%s: picture larger than %d bytes", path, MaxPictureSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%s: %w (%s)", path, ErrNotAnImage, contentType)
	}

	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
