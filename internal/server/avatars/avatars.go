// Package avatars stores account profile pictures. Pictures submitted as
// base64 data URIs are uploaded to S3 and replaced by an s3:// reference;
// anything else (usually a URL) is kept as is.
package avatars

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// MaxPictureSize caps decoded data-URI payloads.
const MaxPictureSize = 2 << 20

var ErrInvalidPicture = errors.New("invalid profile picture")

type Store interface {
	Save(ctx context.Context, username, picture string) (string, error)
}

// Passthrough keeps every picture verbatim. It is used when S3 is not
// configured.
type Passthrough struct{}

func (Passthrough) Save(_ context.Context, _ string, picture string) (string, error) {
	return picture, nil
}

// IsDataURI reports whether picture is a data: URI.
func IsDataURI(picture string) bool {
	return strings.HasPrefix(picture, "data:")
}

// decodeDataURI parses data:<mime>;base64,<payload>.
func decodeDataURI(uri string) (contentType string, body []byte, err error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing payload", ErrInvalidPicture)
	}
	contentType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return "", nil, fmt.Errorf("%w: payload is not base64", ErrInvalidPicture)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", nil, fmt.Errorf("%w: unsupported content type %q", ErrInvalidPicture, contentType)
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxPictureSize+2 {
		return "", nil, fmt.Errorf("%w: larger than %d bytes", ErrInvalidPicture, MaxPictureSize)
	}
	body, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidPicture, err)
	}
	if len(body) > MaxPictureSize {
		return "", nil, fmt.Errorf("%w: larger than %d bytes", ErrInvalidPicture, MaxPictureSize)
	}
	return contentType, body, nil
}
