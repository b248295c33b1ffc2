// Package photo turns uploaded image bytes into the data URI stored as a
// person's photo reference.
package photo

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	// ErrEmpty is returned when no image bytes were uploaded.
	ErrEmpty = errors.New("photo is empty")

	// ErrTooLarge is returned when the upload exceeds the configured limit.
	ErrTooLarge = errors.New("photo is too large")

	// ErrUnsupportedType is returned when the content is not an image.
	ErrUnsupportedType = errors.New("photo is not an image")
)

// Encoder converts image uploads to data URIs.
type Encoder struct {
	maxBytes int64
}

// NewEncoder returns an Encoder rejecting uploads larger than maxBytes.
func NewEncoder(maxBytes int64) *Encoder {
	return &Encoder{maxBytes: maxBytes}
}

// MaxBytes returns the upload size limit.
func (e *Encoder) MaxBytes() int64 {
	return e.maxBytes
}

// EncodeDataURI returns data as "data:<mime>;base64,<payload>".
// The MIME type is sniffed from the content; the file name extension is
// only consulted to normalise "image/jpg" to "image/jpeg".
func (e *Encoder) EncodeDataURI(data []byte, filename string) (string, error) {
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if e.maxBytes > 0 && int64(len(data)) > e.maxBytes {
		return "", fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrTooLarge, len(data), e.maxBytes)
	}

	mime := MIMEType(data, filename)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("%w: detected %s", ErrUnsupportedType, mime)
	}

	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// MIMEType sniffs the media type of data, without parameters.
// When sniffing is inconclusive the extension of filename decides.
func MIMEType(data []byte, filename string) string {
	detected := mimetype.Detect(data)
	mime := strings.ToLower(strings.SplitN(detected.String(), ";", 2)[0])
	if mime == "application/octet-stream" {
		if byExt := mimeFromExtension(filename); byExt != "" {
			mime = byExt
		}
	}
	if mime == "image/jpg" {
		mime = "image/jpeg"
	}
	return mime
}

func mimeFromExtension(filename string) string {
	dot := strings.LastIndexByte(filename, '.')
	if dot < 0 || dot == len(filename)-1 {
		return ""
	}
	ext := strings.ToLower(filename[dot+1:])
	if ext == "jpg" {
		ext = "jpeg"
	}
	m := mimetype.Lookup("image/" + ext)
	if m == nil {
		return ""
	}
	return m.String()
}
