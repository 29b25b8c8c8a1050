package server

import (
	"crypto/rand"

	"github.com/google/uuid"
)

const (
	roomIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"
	roomIDLength   = 7
)

// newRoomID draws roomIDLength symbols from a 64-symbol alphabet. The
// alphabet size divides 256, so masking the random byte keeps it unbiased.
func newRoomID() string {
	buf := make([]byte, roomIDLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the OS source is unavailable.
		panic(err)
	}
	for i := range buf {
		buf[i] = roomIDAlphabet[int(buf[i])&(len(roomIDAlphabet)-1)]
	}
	return string(buf)
}

func isRoomID(value string) bool {
	if len(value) != roomIDLength {
		return false
	}
	for i := 0; i < len(value); i++ {
		c := value[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '_', c == '-':
		default:
			return false
		}
	}
	return true
}

func newConnectionID() string {
	return uuid.NewString()
}
