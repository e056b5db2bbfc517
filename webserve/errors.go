package webserve

import "errors"

// ErrInvalidPort reports a listen port outside the accepted 1..60000 range.
var ErrInvalidPort = errors.New("invalid port number (try 1->60000)")
