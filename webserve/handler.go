package webserve

// ConvHandler decides the response for a parsed conversation. An
// implementation may set the Response and ResponseCode fields and
// reports whether it produced a usable response. It must not touch the
// underlying socket, and it runs synchronously inside the event loop,
// so it must not block for long.
type ConvHandler interface {
	ServeConv(conv *Conversation) bool
}

// ConvHandlerFunc adapts a plain function to the ConvHandler interface.
type ConvHandlerFunc func(conv *Conversation) bool

func (f ConvHandlerFunc) ServeConv(conv *Conversation) bool {
	return f(conv)
}

// DefaultResponder answers every conversation with a fixed small body.
type DefaultResponder struct{}

func (DefaultResponder) ServeConv(conv *Conversation) bool {
	conv.Response = append([]byte(nil), defaultContent...)
	conv.ResponseCode = 200
	return true
}

// dispatch runs the registered handler over conv, falling back to the
// default responder when none is registered or the handler declines.
// It mutates conv in place and never touches the socket.
func dispatch(conv *Conversation, h ConvHandler) bool {
	ok := false
	if h != nil {
		ok = h.ServeConv(conv)
	}
	if h == nil || !ok {
		ok = DefaultResponder{}.ServeConv(conv)
	}
	return ok
}
