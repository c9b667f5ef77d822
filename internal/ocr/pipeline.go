package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
)

var (
	// ErrUndecodable means the upload is not a PNG or JPEG image.
	ErrUndecodable = errors.New("image could not be decoded")
	// ErrNoDDT means recognition succeeded but no DDT label was found.
	ErrNoDDT = errors.New("no DDT number detected")
)

// TextRecognizer turns pixels into text.
type TextRecognizer interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// Result is a successful extraction ready to become a material.
type Result struct {
	DDTNumber   string
	BatchNumber string
	PackingList string
}

// Pipeline decodes an image, recognises its text and extracts the fields.
type Pipeline struct {
	Recognizer TextRecognizer
}

func NewPipeline(r TextRecognizer) *Pipeline { return &Pipeline{Recognizer: r} }

// Run processes one image. A missing batch label defaults to "UNKNOWN"; a
// missing DDT label is ErrNoDDT. The packing list is the first
// MaxPackingListRunes runes of the recognizer output, as returned.
func (p *Pipeline) Run(ctx context.Context, content []byte) (Result, error) {
	img, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	text, err := p.Recognizer.Recognize(ctx, img)
	if err != nil {
		return Result{}, fmt.Errorf("recognize: %w", err)
	}

	f := Extract(text)
	if f.DDT == "" {
		return Result{}, ErrNoDDT
	}
	batch := f.Batch
	if batch == "" {
		batch = "UNKNOWN"
	}
	return Result{
		DDTNumber:   f.DDT,
		BatchNumber: batch,
		PackingList: Truncate(text, MaxPackingListRunes),
	}, nil
}
