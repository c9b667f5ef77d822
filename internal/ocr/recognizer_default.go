//go:build !gosseract

package ocr

// NewRecognizer returns the tesseract CLI recognizer. Build with
// -tags gosseract to link libtesseract instead.
func NewRecognizer(path, language string) TextRecognizer {
	return TesseractCLI{Path: path, Language: language}
}
