package gateway

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	"github.com/nfnt/resize"
)

const jpegQuality = 95

// decodeBase64Image decodes a base64 payload into a parsed image.
func decodeBase64Image(payload string, maxDim int) (image.Image, error) {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, err
	}
	return decodeImage(data, maxDim)
}

// decodeImage parses raw image bytes. When maxDim > 0, images whose larger
// side exceeds it are downscaled before re-encoding; at 0 the pixels pass
// through untouched.
func decodeImage(data []byte, maxDim int) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if maxDim > 0 {
		b := img.Bounds()
		if b.Dx() > maxDim || b.Dy() > maxDim {
			img = resize.Thumbnail(uint(maxDim), uint(maxDim), img, resize.Lanczos3)
		}
	}
	return img, nil
}

// encodeJPEG writes img as a single-frame JPEG, the canonical on-disk
// format for materialized payloads.
func encodeJPEG(w io.Writer, img image.Image) error {
	return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
}
