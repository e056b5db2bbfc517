package webserve

import "strings"

// requests lists the supported method prefixes in match order.
var requests = []string{
	"GET ",
	"POST ",
}

// splitBoundary returns the offset separating the header block from the
// body. Scanning from the start, the boundary is the first byte that
// follows a run of at least four consecutive CR or LF characters; the
// run itself stays with the header. A payload without such a run is all
// header. Counting characters rather than matching a fixed terminator
// tolerates CRLF and LF-only line endings mixed together.
func splitBoundary(buf []byte) int {
	boundary := len(buf)
	retcount := 0
	for i := 0; i < len(buf) && boundary == len(buf); i++ {
		if buf[i] == '\r' || buf[i] == '\n' {
			retcount++
		} else if retcount >= 4 {
			boundary = i
		} else {
			retcount = 0
		}
	}
	return boundary
}

// classifyRequest matches the payload's prefix against the supported
// methods, case-insensitively. The first match wins.
func classifyRequest(buf []byte) RequestType {
	for i, prefix := range requests {
		if len(buf) >= len(prefix) && strings.EqualFold(string(buf[:len(prefix)]), prefix) {
			return RequestType(i)
		}
	}
	return RequestInvalid
}

// sanitizeRequest replaces line terminator bytes with a visible
// placeholder so a raw request fits on one log line.
func sanitizeRequest(buf []byte) string {
	return mapChars(string(buf), "\r\n", "**")
}

func mapChars(s, from, to string) string {
	for i := 0; i < len(from); i++ {
		s = strings.ReplaceAll(s, string(from[i]), string(to[i]))
	}
	return s
}
