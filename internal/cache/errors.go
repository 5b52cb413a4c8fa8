package cache

import "errors"

// ErrWrongType is returned when an operation is invoked against an
// entry whose value shape doesn't match -- e.g. ZADD against a scalar
// key. It never mutates state and the caller is expected to handle it
// as a recoverable, operation-scoped failure.
var ErrWrongType = errors.New("WRONGTYPE: operation against a key holding the wrong kind of value")
