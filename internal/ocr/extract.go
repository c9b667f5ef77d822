// Package ocr turns photographed shipping documents into material fields.
package ocr

import "regexp"

// MaxPackingListRunes bounds the recognised text kept as a packing list.
const MaxPackingListRunes = 500

// Labels are followed by optional colons or spaces and a token of Unicode
// letters, digits and underscores.
var (
	ddtPattern   = regexp.MustCompile(`(?i)DDT[:\s\p{Z}]*([\p{L}\p{N}_]+)`)
	batchPattern = regexp.MustCompile(`(?i)BATCH[:\s\p{Z}]*([\p{L}\p{N}_]+)`)
)

// Fields is what could be read off a document. DDT and Batch are empty
// when their label was not found.
type Fields struct {
	DDT   string
	Batch string
	Text  string
}

// Extract finds the first DDT and BATCH labels in text.
func Extract(text string) Fields {
	f := Fields{Text: text}
	if m := ddtPattern.FindStringSubmatch(text); m != nil {
		f.DDT = m[1]
	}
	if m := batchPattern.FindStringSubmatch(text); m != nil {
		f.Batch = m[1]
	}
	return f
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
