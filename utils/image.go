package utils

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"github.com/disintegration/imaging"
)

const (
	// StoredImageWidth is the fixed width of the stored representation.
	// Wider inputs are scaled down to this width with the aspect ratio
	// preserved. Narrower inputs keep their original dimensions: we never
	// upscale, since that only inflates storage without adding detail.
	StoredImageWidth = 300

	// storedJPEGQuality bounds the size of the stored representation.
	storedJPEGQuality = 70
)

// DecodeError reports that the input could not be decoded as an image
// (corrupt data or an unsupported format). Not retryable for the same input.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("decode image: %v", e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError reports that the re-encoding step could not produce output.
// Not retryable for the same input.
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string { return fmt.Sprintf("encode image: %v", e.Err) }
func (e *EncodeError) Unwrap() error { return e.Err }

// PreprocessImage turns an uploaded image of arbitrary size and format into
// the compact representation stored on a meal record: scaled to
// StoredImageWidth (height follows the aspect ratio), re-encoded as JPEG and
// wrapped in a data URL so the result is displayable with no further network
// access. The input slice is never modified.
func PreprocessImage(data []byte) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", &DecodeError{Err: err}
	}

	if img.Bounds().Dx() > StoredImageWidth {
		// Height 0 keeps the aspect ratio.
		img = imaging.Resize(img, StoredImageWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(storedJPEGQuality)); err != nil {
		return "", &EncodeError{Err: err}
	}

	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
