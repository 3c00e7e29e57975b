package session

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewSessionID returns an id of the form "<base36 millis>.<4-char base36
// random>", uppercased, per the session identifier rule.
func NewSessionID() (string, error) {
	millis := time.Now().UnixMilli()
	suffix, err := randomBase36(4)
	if err != nil {
		return "", fmt.Errorf("session: generate id: %w", err)
	}
	return strings.ToUpper(strconv.FormatInt(millis, 36) + "." + suffix), nil
}

// HTTP1RequestID builds "<sessionID>.<4-char base36 request index>" for an
// HTTP/1.1 request served on a socket that may carry multiple requests.
func HTTP1RequestID(sessionID string, requestIndex int64) string {
	return strings.ToUpper(sessionID + "." + base36Pad4(requestIndex))
}

// HTTP2RequestID builds "<sessionID>.<4-char base36 stream id>" for a
// request served on an HTTP/2 stream.
func HTTP2RequestID(sessionID string, streamID uint32) string {
	return strings.ToUpper(sessionID + "." + base36Pad4(int64(streamID)))
}

// base36Pad4 formats n in base36, left-padded with zeros to 4 characters.
func base36Pad4(n int64) string {
	s := strconv.FormatInt(n, 36)
	if len(s) < 4 {
		s = strings.Repeat("0", 4-len(s)) + s
	}
	return s
}

// randomBase36 returns n random characters drawn from the base36 alphabet.
func randomBase36(n int) (string, error) {
	max := big.NewInt(int64(len(base36Alphabet)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = base36Alphabet[idx.Int64()]
	}
	return string(buf), nil
}
