// Package ocr defines the OCR provider contract used by the past-paper
// extraction pipeline and ships a Tesseract-backed implementation.
package ocr

import "context"

// Input encapsulates a single image submitted for OCR.
type Input struct {
	// Image is the encoded image payload in the format declared by Format.
	Image []byte
	// Format declares the image content type (e.g. image/png).
	Format string
	// Languages is a list of trained-data hints (e.g. "eng").
	Languages []string
	// DPI carries the effective dots-per-inch; zero means unknown.
	DPI int
}

// Result captures OCR output for a single input image.
type Result struct {
	// PlainText contains the linearized text extracted from the image.
	PlainText string
}

// Engine is the OCR provider contract: one image in, one result out.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, input Input) (Result, error)
}
