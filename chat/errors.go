package chat

import "errors"

var (
	// no session resolves to the given id or access code
	ErrNotFound = errors.New("chat not found")

	// the session is closed; visitor and agent messages are refused
	ErrChatClosed = errors.New("chat is closed")

	// the visitor is on the block list
	ErrVisitorBlocked = errors.New("visitor is blocked")

	// an agent already accepted this session
	ErrAlreadyAccepted = errors.New("chat already accepted")

	// the agent has no valid license bound to it
	ErrNotEntitled = errors.New("agent is not entitled")

	// no message with the given id exists on the session's timeline
	ErrMessageNotFound = errors.New("message not found")
)

// reports whether err is a policy refusal: the operation was structurally
// disallowed in the current state but nothing was corrupted. Distinct from
// ErrNotFound, where the target does not resolve at all.
func IsRefused(err error) bool {
	return errors.Is(err, ErrChatClosed) ||
		errors.Is(err, ErrVisitorBlocked) ||
		errors.Is(err, ErrAlreadyAccepted) ||
		errors.Is(err, ErrNotEntitled)
}
