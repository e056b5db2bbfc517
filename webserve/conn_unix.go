//go:build linux
// +build linux

package webserve

import (
	"github.com/ftln/go-threadless-web/log"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// BufSize bounds the single bulk read performed per connection.
const BufSize = 8096

// ReadOutcome is the result of the read phase for one connection.
type ReadOutcome int

const (
	ReadSuccess ReadOutcome = iota
	ReadUnsupportedMethod
	ReadFailed
)

// readRequest performs the single bulk read for fd, splits the payload
// at the header/body boundary and classifies the method, filling conv.
// The header and body are populated together even when the method turns
// out to be unsupported, so a callback never sees a partial parse.
func readRequest(fd int, conv *Conversation) ReadOutcome {
	buf := make([]byte, BufSize)

	n, err := unix.Read(fd, buf)
	if n <= 0 || err != nil {
		log.Logger.Warn("failed to read browser request", zap.Int("fd", fd), zap.Error(err))
		return ReadFailed
	}
	payload := buf[:n]

	boundary := splitBoundary(payload)
	if conv != nil {
		conv.RequestHeader = append([]byte(nil), payload[:boundary]...)
		conv.RequestBody = append([]byte(nil), payload[boundary:]...)
		conv.Type = classifyRequest(payload)
	}

	hit := 0
	if conv != nil {
		hit = conv.Hit
	}
	log.Logger.Info("request", zap.Int("hit", hit), zap.String("data", sanitizeRequest(payload)))

	if conv == nil || conv.Type == RequestInvalid {
		log.Logger.Warn("operation not supported", zap.Int("fd", fd))
		return ReadUnsupportedMethod
	}
	return ReadSuccess
}

// writeResponse sends the response for conv in two writes, header block
// then body, and closes fd. The close happens regardless of the write
// outcome; write errors are logged, never retried.
func writeResponse(fd int, conv *Conversation) {
	content := defaultContent
	hit := 0
	if conv != nil {
		hit = conv.Hit
		if conv.Response != nil {
			content = conv.Response
		}
	}

	if _, err := unix.Write(fd, []byte(responseHead(len(content)))); err != nil {
		log.Logger.Error("failed to write response head", zap.Int("fd", fd), zap.Error(err))
	}
	if n, err := unix.Write(fd, content); err != nil {
		log.Logger.Error("failed to write response body", zap.Int("fd", fd), zap.Error(err))
	} else if n < len(content) {
		log.Logger.Error("short response body write", zap.Int("fd", fd), zap.Int("written", n))
	}

	if err := CloseFd(fd); err != nil {
		log.Logger.Debug("failed to close connection", zap.Int("fd", fd), zap.Error(err))
	}
	log.Logger.Info("request closed", zap.Int("hit", hit))
}

// writeForbidden answers fd with the fixed 403 payload. The caller is
// responsible for closing the connection.
func writeForbidden(fd int) {
	n, err := unix.Write(fd, []byte(forbiddenText))
	if err != nil {
		log.Logger.Error("failed to write forbidden response", zap.Int("fd", fd), zap.Error(err))
		return
	}
	log.Logger.Info("forbidden", zap.Int("fd", fd), zap.Int("written", n))
}
