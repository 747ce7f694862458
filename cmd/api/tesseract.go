//go:build tesseract && cgo

package main

// Registers OCR_PROVIDER=tesseract. Needs libtesseract and leptonica headers.
import _ "github.com/bosocmputer/ghostwriter/internal/ai/tesseract"
