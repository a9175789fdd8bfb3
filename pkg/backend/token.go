package backend

import "context"

// Token is a shared cancellation flag with two observers: the producing task
// (polls IsCancelled between chunks) and the process supervisor (kills the
// spawned child via Done). A token is never re-armed — cancelling a search
// creates a new token for the next search (spec §3).
type Token struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewToken creates a token derived from parent. Cancelling parent (e.g. on
// process shutdown) cancels the token too.
func NewToken(parent context.Context) *Token {
	ctx, cancel := context.WithCancel(parent)
	return &Token{ctx: ctx, cancel: cancel}
}

// Cancel marks the token cancelled. Idempotent.
func (t *Token) Cancel() { t.cancel() }

// IsCancelled reports whether Cancel has been called, or the parent context
// ended.
func (t *Token) IsCancelled() bool {
	select {
	case <-t.ctx.Done():
		return true
	default:
		return false
	}
}

// Done returns a channel closed when the token is cancelled, for use in
// select statements (e.g. by the child-process supervisor).
func (t *Token) Done() <-chan struct{} { return t.ctx.Done() }

// Context exposes the underlying context, e.g. to derive a further
// WithTimeout for a child process ceiling.
func (t *Token) Context() context.Context { return t.ctx }
