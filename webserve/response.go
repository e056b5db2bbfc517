package webserve

import "fmt"

const Version = 23

const responseType = "text/html"

// defaultContent is the body sent when no callback supplies one.
var defaultContent = []byte("Okay\n")

// forbiddenText is the complete fixed 403 payload: header block with
// bare LF line endings, blank line, then exactly 185 body bytes.
const forbiddenText = "HTTP/1.1 403 Forbidden\nContent-Length: 185\nConnection: close\nContent-Type: text/html\n\n" +
	"<html><head>\n<title>403 Forbidden</title>\n</head><body>\n<h1>Forbidden</h1>\n" +
	"The requested URL, file type or operation is not allowed on this simple static file webserver.\n" +
	"</body></html>\n"

// responseHead formats the response header block for a body of the
// given byte length, terminated by a blank line.
func responseHead(length int) string {
	return fmt.Sprintf("HTTP/1.1 200 OK\nServer: threadless/%d.0\nContent-Length: %d\nConnection: close\nContent-Type: %s\n\n",
		Version, length, responseType)
}
