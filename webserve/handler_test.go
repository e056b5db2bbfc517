package webserve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatchDefaultWhenNoHandler(t *testing.T) {
	conv := &Conversation{Hit: 1}

	ok := dispatch(conv, nil)

	assert.True(t, ok)
	assert.Equal(t, defaultContent, conv.Response)
	assert.Equal(t, 200, conv.ResponseCode)
}

func TestDispatchUsesRegisteredHandler(t *testing.T) {
	conv := &Conversation{Hit: 1}
	handler := ConvHandlerFunc(func(c *Conversation) bool {
		c.Response = []byte("<html>custom</html>")
		c.ResponseCode = 200
		return true
	})

	ok := dispatch(conv, handler)

	assert.True(t, ok)
	assert.Equal(t, []byte("<html>custom</html>"), conv.Response)
}

func TestDispatchFallsBackWhenHandlerDeclines(t *testing.T) {
	conv := &Conversation{Hit: 1}
	handler := ConvHandlerFunc(func(c *Conversation) bool {
		return false
	})

	ok := dispatch(conv, handler)

	assert.True(t, ok)
	assert.Equal(t, defaultContent, conv.Response)
}

func TestDispatchMutatesInPlace(t *testing.T) {
	conv := &Conversation{Hit: 3, Type: RequestPost, RequestBody: []byte("a=b")}
	var seen *Conversation
	handler := ConvHandlerFunc(func(c *Conversation) bool {
		seen = c
		c.Response = []byte("ok")
		return true
	})

	dispatch(conv, handler)

	assert.Same(t, conv, seen)
	assert.Equal(t, RequestPost, conv.Type)
	assert.Equal(t, []byte("a=b"), conv.RequestBody)
}
