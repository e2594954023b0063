package formdata

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Kind identifies a file format by its canonical extension.
type Kind string

const (
	KindJPEG Kind = ".jpg"
	KindPNG  Kind = ".png"
	KindGIF  Kind = ".gif"
	KindWEBP Kind = ".webp"
	KindPDF  Kind = ".pdf"
)

// signature maps leading magic bytes to a file kind.
type signature struct {
	kind   Kind
	offset int
	magic  []byte
}

var signatures = []signature{
	{KindJPEG, 0, []byte{0xFF, 0xD8, 0xFF}},
	{KindPNG, 0, []byte{0x89, 0x50, 0x4E, 0x47}},
	{KindGIF, 0, []byte{0x47, 0x49, 0x46, 0x38}},
	{KindPDF, 0, []byte{0x25, 0x50, 0x44, 0x46}},
	{KindWEBP, 8, []byte("WEBP")}, // inside a RIFF container
}

// pdfMagic is the exact 4-byte header required by the strict check.
var pdfMagic = []byte{0x25, 0x50, 0x44, 0x46} // %PDF

// DetectKind sniffs the file kind from leading magic bytes, independent of
// any claimed filename or extension. When no signature matches it falls back
// to KindJPEG; the result is only ever used to infer a storage extension,
// never as a validity claim.
func DetectKind(data []byte) Kind {
	for _, sig := range signatures {
		if sig.offset+len(sig.magic) > len(data) {
			continue
		}
		if sig.kind == KindWEBP && !bytes.HasPrefix(data, []byte("RIFF")) {
			continue
		}
		if bytes.Equal(data[sig.offset:sig.offset+len(sig.magic)], sig.magic) {
			return sig.kind
		}
	}
	return KindJPEG
}

// receiptExtensions are the upload extensions the permissive check accepts.
var receiptExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".pdf":  true,
}

// AllowedReceiptFile is the permissive acceptance check used for diary
// receipts and general documents. It requires a known image/PDF extension
// and at least 4 bytes of content. An unrecognized magic signature does not
// reject the file: the check fails open so that oddly encoded but
// well-named uploads still go through.
func AllowedReceiptFile(filename string, data []byte) bool {
	if len(data) < 4 {
		return false
	}
	ext := strings.ToLower(filepath.Ext(filename))
	return receiptExtensions[ext]
}

// ValidPDF is the strict acceptance check used for mortgage statement
// uploads. It fails closed: the filename must end in .pdf and the first
// four bytes must be exactly %PDF. A PNG renamed to .pdf is rejected.
func ValidPDF(filename string, data []byte) bool {
	if strings.ToLower(filepath.Ext(filename)) != ".pdf" {
		return false
	}
	if len(data) < 4 {
		return false
	}
	return bytes.Equal(data[:4], pdfMagic)
}
