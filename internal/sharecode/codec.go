// Package sharecode turns build documents into compact URL-safe strings and
// back. A code is the raw-deflate compressed canonical JSON of the build,
// base64url encoded without padding.
package sharecode

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"

	"github.com/meur/buildforge/internal/build"
	"github.com/meur/buildforge/internal/models"
	"github.com/meur/buildforge/internal/validation"
)

// DefaultMaxPayload caps the decompressed size of a code
const DefaultMaxPayload = 1 << 20

var (
	ErrMalformedCode   = errors.New("malformed share code")
	ErrPayloadTooLarge = errors.New("share code payload too large")
)

// Codec compresses and decompresses share codes
type Codec struct {
	maxPayload int64
}

// NewCodec creates a codec that refuses payloads above maxPayload bytes once
// decompressed. A non-positive limit uses DefaultMaxPayload.
func NewCodec(maxPayload int64) *Codec {
	if maxPayload <= 0 {
		maxPayload = DefaultMaxPayload
	}
	return &Codec{maxPayload: maxPayload}
}

// Compress encodes arbitrary bytes as a share code
func (c *Codec) Compress(payload []byte) (string, error) {
	if int64(len(payload)) > c.maxPayload {
		return "", ErrPayloadTooLarge
	}

	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return "", fmt.Errorf("failed to create compressor: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return "", fmt.Errorf("failed to compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to flush compressor: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf.Bytes()), nil
}

// Decompress returns exactly the bytes that were compressed into code
func (c *Codec) Decompress(code string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCode, err)
	}

	r := flate.NewReader(bytes.NewReader(raw))
	defer r.Close()

	out, err := io.ReadAll(io.LimitReader(r, c.maxPayload+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCode, err)
	}
	if int64(len(out)) > c.maxPayload {
		return nil, ErrPayloadTooLarge
	}
	return out, nil
}

// Canonical renders a build as the JSON carried inside share codes
func Canonical(b models.Build) ([]byte, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal build: %w", err)
	}
	return data, nil
}

// Encode validates a build and returns its share code. The build is
// normalized through a Document first so the code never carries nulls,
// gapped positions or repeated ids.
func (c *Codec) Encode(b models.Build) (string, error) {
	if errs := validation.Build(&b); len(errs) > 0 {
		return "", errs
	}

	data, err := Canonical(build.FromBuild(b).Snapshot())
	if err != nil {
		return "", err
	}
	return c.Compress(data)
}

// Decode returns the JSON inside a code together with the parsed build.
// The JSON must describe a valid build.
func (c *Codec) Decode(code string) ([]byte, models.Build, error) {
	data, err := c.Decompress(code)
	if err != nil {
		return nil, models.Build{}, err
	}

	var b models.Build
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, models.Build{}, fmt.Errorf("%w: %v", ErrMalformedCode, err)
	}
	if errs := validation.Build(&b); len(errs) > 0 {
		return nil, models.Build{}, errs
	}
	return data, b, nil
}

// DecodeDocument decodes a code into an editable document
func (c *Codec) DecodeDocument(code string, opts ...build.Option) (*build.Document, error) {
	_, b, err := c.Decode(code)
	if err != nil {
		return nil, err
	}
	return build.FromBuild(b, opts...), nil
}
