package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"strings"
)

// TesseractCLI runs the tesseract binary, feeding the image on stdin and
// reading plain text from stdout.
type TesseractCLI struct {
	Path     string // binary name or path; "tesseract" when empty
	Language string // traineddata language code; "eng" when empty
}

func (t TesseractCLI) Recognize(ctx context.Context, img image.Image) (string, error) {
	var in bytes.Buffer
	if err := png.Encode(&in, img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}

	bin := t.Path
	if bin == "" {
		bin = "tesseract"
	}
	lang := t.Language
	if lang == "" {
		lang = "eng"
	}

	var out, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "stdin", "stdout", "-l", lang)
	cmd.Stdin = &in
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out.String(), nil
}
