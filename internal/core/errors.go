package core

// Kind enumerates the expected, non-exceptional outcomes of adversarial or
// racy client input. These are never panics: callers check the Kind and
// surface it to the originating client via room_error/room_settings_error/
// game_error, and never to anyone else.
type Kind string

const (
	ErrInvalidPayload    Kind = "invalid_payload"
	ErrNotFound          Kind = "not_found"
	ErrAlreadyIn         Kind = "already_in"
	ErrNotWaiting        Kind = "not_waiting"
	ErrFull              Kind = "full"
	ErrDuplicate         Kind = "duplicate"
	ErrTooSmall          Kind = "too_small"
	ErrNotOwner          Kind = "not_owner"
	ErrTooFewPlayers     Kind = "too_few_players"
	ErrWrongPhase        Kind = "wrong_phase"
	ErrNotDrawer         Kind = "not_drawer"
	ErrDrawerCannotGuess Kind = "drawer_cannot_guess"
	ErrAlreadyGuessed    Kind = "already_guessed"
	ErrInvalidName       Kind = "invalid_name"
	ErrTooLong           Kind = "too_long"
	ErrTooShort          Kind = "too_short"
	ErrNoWord            Kind = "no_word"
	ErrIDExhausted       Kind = "id_exhausted"
)

// Error wraps a Kind as an error so engine code can keep returning plain
// errors while callers that care can recover the Kind with AsKind.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind)
}

// New builds an *Error for the given kind.
func New(kind Kind) *Error {
	return &Error{Kind: kind}
}

// Newf builds an *Error for the given kind with a detail message.
func Newf(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// AsKind extracts the Kind carried by err, if any.
func AsKind(err error) (Kind, bool) {
	if err == nil {
		return "", false
	}
	if e, ok := err.(*Error); ok {
		return e.Kind, true
	}
	return "", false
}
