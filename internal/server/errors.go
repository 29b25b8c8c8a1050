package server

import "errors"

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrNotHost        = errors.New("only host can perform this action")
	ErrAlreadyStarted = errors.New("game already started")
	ErrWrongPhase     = errors.New("submission not expected in this phase")
	ErrNoSlot         = errors.New("player has no slot in this game")
	ErrInvalidPayload = errors.New("invalid payload")
	ErrUnknownEvent   = errors.New("unknown event")
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrRoomNotFound, "RoomNotFound"},
	{ErrNotHost, "NotHost"},
	{ErrAlreadyStarted, "AlreadyStarted"},
	{ErrWrongPhase, "WrongPhase"},
	{ErrNoSlot, "NoSlot"},
	{ErrInvalidPayload, "InvalidPayload"},
	{ErrUnknownEvent, "UnknownEvent"},
}

// errorCode maps an error to the code sent in acknowledgements.
func errorCode(err error) string {
	for _, entry := range errorCodes {
		if errors.Is(err, entry.err) {
			return entry.code
		}
	}
	return "Internal"
}
