//go:build gosseract

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
)

// Gosseract recognises text in-process through libtesseract. It needs cgo
// and the tesseract/leptonica headers, hence the build tag.
type Gosseract struct {
	Language string
}

func (g Gosseract) Recognize(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()
	if g.Language != "" {
		if err := client.SetLanguage(g.Language); err != nil {
			return "", fmt.Errorf("set language: %w", err)
		}
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	return client.Text()
}

// NewRecognizer prefers the in-process engine when it is compiled in.
func NewRecognizer(_ string, language string) TextRecognizer {
	return Gosseract{Language: language}
}
