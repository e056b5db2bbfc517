package webserve

// RequestType classifies the HTTP method of a parsed request.
type RequestType int

const (
	RequestInvalid RequestType = iota - 1

	RequestGet
	RequestPost
)

// ResponseUnset marks a conversation whose response code has not been
// decided yet. It is distinct from every real HTTP status code.
const ResponseUnset = 0

// Conversation is the per-connection record of one request/response
// exchange. It is created on accept, filled by the read phase, possibly
// annotated by the registered callback and consumed by the write phase.
type Conversation struct {
	Hit           int
	Type          RequestType
	RequestHeader []byte
	RequestBody   []byte
	ResponseCode  int
	Response      []byte
}

// ConvTable maps connection fds to their live conversation. Each fd
// holds at most one conversation at a time; the table owns every entry
// outright. Access is single-threaded, from the event loop only.
type ConvTable struct {
	convs map[int]*Conversation
}

func NewConvTable() *ConvTable {
	return &ConvTable{
		convs: make(map[int]*Conversation),
	}
}

// Acquire starts a fresh conversation for fd, discarding any stale one
// left behind by an earlier use of the same fd value.
func (t *ConvTable) Acquire(fd, hit int) *Conversation {
	if fd < 0 {
		return nil
	}
	conv := &Conversation{
		Hit:  hit,
		Type: RequestInvalid,
	}
	t.convs[fd] = conv
	return conv
}

// Get returns the conversation for fd, or nil when the slot is empty.
func (t *ConvTable) Get(fd int) *Conversation {
	return t.convs[fd]
}

// Release clears the slot for fd. Releasing an empty slot is a no-op.
func (t *ConvTable) Release(fd int) {
	delete(t.convs, fd)
}

// Len returns the number of live conversations.
func (t *ConvTable) Len() int {
	return len(t.convs)
}
