// Package formdata decodes multipart/form-data request bodies without
// relying on mime/multipart.
//
// The decoder operates on a fully buffered body: the caller reads the
// request body (capped by the web layer) and hands the raw bytes plus the
// boundary token to Parse. Every operation is a pure function over the
// input bytes, so concurrent use across requests needs no coordination.
//
// The decoder never fails on malformed input. Sections that cannot be
// decoded are dropped and the result degrades to a smaller, possibly
// empty, part list. Callers decide whether a missing part is an error.
package formdata

import (
	"bytes"
	"regexp"
	"strings"
)

// Part is one named section of a multipart/form-data body: either an
// uploaded file or a plain form field. Exactly one of Data and StringValue
// is populated, per the classification rules in classify.
type Part struct {
	Name        string
	FileName    string
	ContentType string
	Data        []byte
	StringValue string
}

// IsFile reports whether the part was classified as file content.
func (p Part) IsFile() bool {
	return p.Data != nil
}

// Form is an ordered list of parts, in order of appearance in the body.
type Form []Part

// File returns the first file part with the given field name.
func (f Form) File(name string) (Part, bool) {
	for _, p := range f {
		if p.Name == name && p.IsFile() {
			return p, true
		}
	}
	return Part{}, false
}

// Value returns the first text field with the given name.
func (f Form) Value(name string) (string, bool) {
	for _, p := range f {
		if p.Name == name && !p.IsFile() {
			return p.StringValue, true
		}
	}
	return "", false
}

var (
	nameRe        = regexp.MustCompile(`form-data;\s*name="([^"]+)"`)
	fileNameRe    = regexp.MustCompile(`filename="([^"]*)"`)
	contentTypeRe = regexp.MustCompile(`(?i)content-type:\s*([^\r\n]+)`)
)

// headerSep separates a section's header block from its content.
var headerSep = []byte("\r\n\r\n")

// Parse decodes body into its parts using the given boundary token (without
// the leading dashes). An empty boundary, or a body that never mentions the
// boundary, yields an empty form. Sections with no header separator or no
// extractable field name are dropped silently.
func Parse(body []byte, boundary string) Form {
	var form Form
	for _, section := range splitSections(body, boundary) {
		if part, ok := decodeSection(section); ok {
			form = append(form, part)
		}
	}
	return form
}

// decodeSection extracts one Part from the bytes between two boundary
// markers. The section starts with the tail of the boundary line, then the
// header block, then content.
func decodeSection(section []byte) (Part, bool) {
	sep := bytes.Index(section, headerSep)
	if sep < 0 {
		return Part{}, false
	}
	header := string(section[:sep])
	content := trimBoundaryArtifacts(section[sep+len(headerSep):])

	m := nameRe.FindStringSubmatch(header)
	if m == nil {
		return Part{}, false
	}
	part := Part{Name: m[1]}

	if m := fileNameRe.FindStringSubmatch(header); m != nil {
		part.FileName = m[1]
	}
	if m := contentTypeRe.FindStringSubmatch(header); m != nil {
		part.ContentType = strings.TrimSpace(m[1])
	}

	return classify(part, content), true
}

// classify decides whether content is file data or a text field.
//
// A part with a filename is always a file. A part without one is still
// treated as a file when its declared type looks binary (image/* or
// application/*); this intentionally matches JSON payloads sent as
// application/json, which callers that want the text must decode from
// Part.Data themselves. Everything else becomes a whitespace-trimmed
// UTF-8 string value.
func classify(part Part, content []byte) Part {
	if part.FileName != "" {
		part.Data = content
		return part
	}
	if strings.HasPrefix(part.ContentType, "image/") ||
		strings.HasPrefix(part.ContentType, "application/") {
		part.Data = content
		return part
	}
	part.StringValue = strings.TrimSpace(string(content))
	return part
}
