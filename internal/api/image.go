package api

import (
	"bytes"
	"image"

	// Registered decoders determine which logo formats are accepted.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// isImage sniffs uploaded bytes by decoding the image header with the
// registered formats: png, jpeg, gif, bmp, webp.
func isImage(data []byte) bool {
	_, _, err := image.DecodeConfig(bytes.NewReader(data))
	return err == nil
}
