package ocr

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

type fakeRecognizer struct {
	text  string
	err   error
	calls int
}

func (f *fakeRecognizer) Recognize(context.Context, image.Image) (string, error) {
	f.calls++
	return f.text, f.err
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.Black)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestExtract(t *testing.T) {
	cases := []struct {
		name, text, ddt, batch string
	}{
		{"labels with colon", "DDT: A123 BATCH: B9", "A123", "B9"},
		{"lower case", "ddt a77\nbatch x1", "a77", "x1"},
		{"no separator", "DDTZ9", "Z9", ""},
		{"first wins", "DDT: 1\nDDT: 2", "1", ""},
		{"nothing", "packing list only", "", ""},
		{"accented token", "DDT: ÀB12 BATCH:\u00a0Lötø_3", "ÀB12", "Lötø_3"},
		{"stops at punctuation", "DDT: 40-11", "40", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := Extract(tc.text)
			if f.DDT != tc.ddt || f.Batch != tc.batch {
				t.Fatalf("Extract(%q) = %q/%q, want %q/%q", tc.text, f.DDT, f.Batch, tc.ddt, tc.batch)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("àèìòù", 3); got != "àèì" {
		t.Fatalf("Truncate runes = %q", got)
	}
	if got := Truncate("abc", 10); got != "abc" {
		t.Fatalf("Truncate short = %q", got)
	}
	if got := Truncate("abc", 0); got != "" {
		t.Fatalf("Truncate zero = %q", got)
	}
}

func TestPipelineSuccess(t *testing.T) {
	rec := &fakeRecognizer{text: "Delivery note\r\nDDT: A123 BATCH: B9\n"}
	res, err := NewPipeline(rec).Run(context.Background(), testPNG(t))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.DDTNumber != "A123" || res.BatchNumber != "B9" {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.PackingList != "Delivery note\r\nDDT: A123 BATCH: B9\n" {
		t.Fatalf("unexpected packing list %q", res.PackingList)
	}
}

func TestPipelineDefaultsBatchAndTruncates(t *testing.T) {
	long := "DDT 555 " + strings.Repeat("x", 900)
	res, err := NewPipeline(&fakeRecognizer{text: long}).Run(context.Background(), testPNG(t))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.BatchNumber != "UNKNOWN" {
		t.Fatalf("batch = %q", res.BatchNumber)
	}
	if n := len([]rune(res.PackingList)); n != MaxPackingListRunes {
		t.Fatalf("packing list length %d", n)
	}
}

func TestPipelineTruncatesRawOutput(t *testing.T) {
	raw := strings.Repeat(" \r\n", 100) + "DDT 9 " + strings.Repeat("y", 600)
	res, err := NewPipeline(&fakeRecognizer{text: raw}).Run(context.Background(), testPNG(t))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.PackingList != raw[:MaxPackingListRunes] {
		t.Fatalf("packing list does not start at the raw output: %q", res.PackingList[:20])
	}
}

func TestPipelineNoDDT(t *testing.T) {
	_, err := NewPipeline(&fakeRecognizer{text: "BATCH: B9"}).Run(context.Background(), testPNG(t))
	if !errors.Is(err, ErrNoDDT) {
		t.Fatalf("expected ErrNoDDT, got %v", err)
	}
}

func TestPipelineUndecodable(t *testing.T) {
	rec := &fakeRecognizer{text: "DDT: 1"}
	_, err := NewPipeline(rec).Run(context.Background(), []byte("%PDF-1.4 not an image"))
	if !errors.Is(err, ErrUndecodable) {
		t.Fatalf("expected ErrUndecodable, got %v", err)
	}
	if rec.calls != 0 {
		t.Fatal("recognizer called for undecodable input")
	}
}

func TestPipelineRecognizerFailure(t *testing.T) {
	boom := errors.New("engine crashed")
	_, err := NewPipeline(&fakeRecognizer{err: boom}).Run(context.Background(), testPNG(t))
	if !errors.Is(err, boom) {
		t.Fatalf("expected recognizer error, got %v", err)
	}
}
