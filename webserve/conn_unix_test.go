//go:build linux
// +build linux

package webserve

import (
	"io"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// socketPair returns a connected pair of stream sockets; the first is
// handed to the code under test as a raw fd, the second is the peer end
// wrapped for convenient reads and writes.
func socketPair(t *testing.T) (int, *os.File) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	require.NoError(t, err)
	peer := os.NewFile(uintptr(fds[1]), "peer")
	t.Cleanup(func() {
		CloseFd(fds[0])
		peer.Close()
	})
	return fds[0], peer
}

func TestReadRequestSuccess(t *testing.T) {
	fd, peer := socketPair(t)

	_, err := peer.Write([]byte("GET /index.html HTTP/1.1\r\nHost: x\r\n\r\n"))
	require.NoError(t, err)

	conv := &Conversation{Hit: 1}
	outcome := readRequest(fd, conv)

	assert.Equal(t, ReadSuccess, outcome)
	assert.Equal(t, RequestGet, conv.Type)
	assert.Equal(t, []byte("GET /index.html HTTP/1.1\r\nHost: x\r\n\r\n"), conv.RequestHeader)
	assert.Empty(t, conv.RequestBody)
}

func TestReadRequestWithBody(t *testing.T) {
	fd, peer := socketPair(t)

	_, err := peer.Write([]byte("POST /form HTTP/1.1\r\nHost: x\r\n\r\nname=value"))
	require.NoError(t, err)

	conv := &Conversation{Hit: 2}
	outcome := readRequest(fd, conv)

	assert.Equal(t, ReadSuccess, outcome)
	assert.Equal(t, RequestPost, conv.Type)
	assert.Equal(t, []byte("name=value"), conv.RequestBody)
}

func TestReadRequestUnsupportedMethodStillPopulates(t *testing.T) {
	fd, peer := socketPair(t)

	_, err := peer.Write([]byte("DELETE / HTTP/1.1\r\n\r\n"))
	require.NoError(t, err)

	conv := &Conversation{Hit: 3}
	outcome := readRequest(fd, conv)

	assert.Equal(t, ReadUnsupportedMethod, outcome)
	assert.Equal(t, RequestInvalid, conv.Type)
	// Header and body are filled together even for rejected methods.
	assert.Equal(t, []byte("DELETE / HTTP/1.1\r\n\r\n"), conv.RequestHeader)
	assert.Empty(t, conv.RequestBody)
}

func TestReadRequestFailedOnClosedPeer(t *testing.T) {
	fd, peer := socketPair(t)
	require.NoError(t, peer.Close())

	conv := &Conversation{Hit: 4}
	outcome := readRequest(fd, conv)

	assert.Equal(t, ReadFailed, outcome)
}

func TestWriteResponseFraming(t *testing.T) {
	for _, body := range []string{"Okay\n", "", "x", strings.Repeat("a", 4096)} {
		fd, peer := socketPair(t)

		conv := &Conversation{Hit: 1, Response: []byte(body)}
		writeResponse(fd, conv)

		raw, err := io.ReadAll(peer)
		require.NoError(t, err)

		head, got, found := strings.Cut(string(raw), "\n\n")
		require.True(t, found)
		assert.Contains(t, head, "HTTP/1.1 200 OK")
		assert.Contains(t, head, "Content-Length: "+strconv.Itoa(len(body)))
		assert.Contains(t, head, "Connection: close")
		assert.Equal(t, body, got)
	}
}

func TestWriteResponseDefaultsWithoutConversation(t *testing.T) {
	fd, peer := socketPair(t)

	writeResponse(fd, nil)

	raw, err := io.ReadAll(peer)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Content-Length: 5")
	assert.True(t, strings.HasSuffix(string(raw), "Okay\n"))
}

func TestWriteResponseClosesFd(t *testing.T) {
	fd, _ := socketPair(t)

	writeResponse(fd, nil)

	assert.False(t, isFDValid(fd))
}

func TestWriteForbidden(t *testing.T) {
	fd, peer := socketPair(t)

	writeForbidden(fd)
	require.NoError(t, unix.Close(fd))

	raw, err := io.ReadAll(peer)
	require.NoError(t, err)

	head, body, found := strings.Cut(string(raw), "\n\n")
	require.True(t, found)
	assert.Contains(t, head, "HTTP/1.1 403 Forbidden")
	assert.Contains(t, head, "Content-Length: 185")
	assert.Len(t, body, 185)
}
