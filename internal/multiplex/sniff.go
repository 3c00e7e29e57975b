package multiplex

import (
	"bufio"
	"net"
	"time"

	"golang.org/x/net/http2"
)

// prefaceDeadline bounds how long the multiplexer waits for the first
// 24 octets of a new connection before giving up on it.
const prefaceDeadline = 1000 * time.Millisecond

// peekConn wraps a net.Conn with a bufio.Reader so the connection
// preface can be inspected without being consumed: bufio.Reader.Peek
// buffers the bytes but leaves them for the next Read, so whichever
// engine (h1 or h2) receives the connection afterward sees the exact
// same byte stream the peek looked at — the un-shift comes for free
// from never having advanced past the buffer.
type peekConn struct {
	net.Conn
	br *bufio.Reader
}

func newPeekConn(c net.Conn) *peekConn {
	return &peekConn{Conn: c, br: bufio.NewReaderSize(c, len(http2.ClientPreface))}
}

func (p *peekConn) Read(b []byte) (int, error) { return p.br.Read(b) }

// sniff peeks the HTTP/2 client connection preface and reports whether
// conn speaks HTTP/2 with prior knowledge. If the preface does not
// arrive whole within prefaceDeadline, it returns an error and the
// caller must destroy the socket.
func sniff(conn *peekConn) (isH2 bool, err error) {
	if err := conn.Conn.SetReadDeadline(time.Now().Add(prefaceDeadline)); err != nil {
		return false, err
	}
	defer conn.Conn.SetReadDeadline(time.Time{})

	preface, err := conn.br.Peek(len(http2.ClientPreface))
	if err != nil {
		return false, err
	}
	return string(preface) == http2.ClientPreface, nil
}
