package formdata

import (
	"bytes"
	"strings"
)

// BoundaryFromContentType extracts the boundary token from a
// multipart/form-data Content-Type header value. Surrounding quotes and
// whitespace are stripped. Returns "" when no boundary parameter is
// present; Parse treats an empty boundary as "no parts".
func BoundaryFromContentType(contentType string) string {
	const param = "boundary="
	idx := strings.Index(contentType, param)
	if idx < 0 {
		return ""
	}
	boundary := contentType[idx+len(param):]
	if end := strings.IndexByte(boundary, ';'); end >= 0 {
		boundary = boundary[:end]
	}
	boundary = strings.TrimSpace(boundary)
	return strings.Trim(boundary, `"`)
}

// splitSections cuts body into the byte ranges between consecutive
// boundary markers. The preamble before the first marker and everything
// from the terminal --boundary-- marker onward are excluded. A body with
// fewer than two marker occurrences has no complete section.
func splitSections(body []byte, boundary string) [][]byte {
	if boundary == "" {
		return nil
	}
	marker := []byte("--" + boundary)

	var offsets []int
	for pos := 0; ; {
		idx := bytes.Index(body[pos:], marker)
		if idx < 0 {
			break
		}
		offsets = append(offsets, pos+idx)
		pos += idx + len(marker)
	}

	var sections [][]byte
	for i := 0; i+1 < len(offsets); i++ {
		start := offsets[i] + len(marker)
		sections = append(sections, body[start:offsets[i+1]])
	}
	return sections
}

// trimBoundaryArtifacts strips the trailing CR, LF and dash bytes that the
// following boundary line leaves at the end of a section's content.
//
// This mirrors what the upload endpoints have always done: a file whose
// real content ends in 0x0D, 0x0A or 0x2D loses those bytes too.
func trimBoundaryArtifacts(content []byte) []byte {
	for len(content) > 0 {
		switch content[len(content)-1] {
		case '\r', '\n', '-':
			content = content[:len(content)-1]
		default:
			return content
		}
	}
	return content
}
