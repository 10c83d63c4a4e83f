// Package embedding defines the feature-extraction boundary: an opaque,
// deterministic mapping from a decoded image to a fixed-length vector.
// The model behind it is fixed for the process lifetime, so the same image
// always yields the same vector.
package embedding

import (
	"bytes"
	"context"
	"fmt"
	"image"

	// Register the decoders for the supported upload formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// Embedder converts a decoded image into an embedding vector. The vector
// length is a property of the model behind the endpoint; the index layer
// checks it against the configured dimensionality on every insert.
type Embedder interface {
	// Embed computes the embedding for img.
	Embed(ctx context.Context, img image.Image) ([]float32, error)
}

// Decode parses uploaded bytes into an image. JPEG, PNG, and GIF are
// accepted; anything else fails.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}
