package call

import (
	"bytes"
	"regexp"
)

var statusLine = regexp.MustCompile(`^HTTP/\d\.\d`)

var blankLine = []byte("\r\n\r\n")

// SplitRaw separates a raw transfer result into header section and body.
//
// When raw starts with an HTTP status line it is cut at the first blank line;
// interim 1xx blocks (such as "100 Continue") are skipped so that header holds
// the final response's headers. Otherwise raw is all body and ok is false.
func SplitRaw(raw []byte) (header, body []byte, ok bool) {
	if !statusLine.Match(raw) {
		return nil, raw, false
	}
	header, body, _ = bytes.Cut(raw, blankLine)
	for isInterim(header) && statusLine.Match(body) {
		header, body, _ = bytes.Cut(body, blankLine)
	}
	return header, body, true
}

// isInterim reports whether header starts with a 1xx status line.
func isInterim(header []byte) bool {
	_, rest, found := bytes.Cut(header, []byte(" "))
	return found && len(rest) > 0 && rest[0] == '1'
}
