package fpc

import "errors"

// Missing-data conditions reported by page sources. A driver treats them as a
// reason to skip one nomination, never to stop a run.
var (
	ErrPageMissing = errors.New("page does not exist")
	ErrRedirect    = errors.New("page is a redirect")
	ErrBadStamp    = errors.New("unrecognised revision timestamp")
)
