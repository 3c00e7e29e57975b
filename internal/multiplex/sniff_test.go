package multiplex

import (
	"net"
	"testing"

	"golang.org/x/net/http2"
)

func TestSniff_DetectsH2Preface(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	go client.Write([]byte(http2.ClientPreface))

	isH2, err := sniff(newPeekConn(server))
	if err != nil {
		t.Fatalf("sniff() error: %v", err)
	}
	if !isH2 {
		t.Error("sniff() = false, want true for HTTP/2 preface")
	}
}

func TestSniff_DetectsH1Request(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	go client.Write([]byte("GET / HTTP/1.1\r\nHost: x\r\n\r\n"))

	isH2, err := sniff(newPeekConn(server))
	if err != nil {
		t.Fatalf("sniff() error: %v", err)
	}
	if isH2 {
		t.Error("sniff() = true, want false for HTTP/1.1 request line")
	}
}

func TestSniff_PrefaceDoesNotAlterStream(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	payload := []byte("GET /x HTTP/1.1\r\n\r\n")
	go client.Write(payload)

	pc := newPeekConn(server)
	if _, err := sniff(pc); err != nil {
		t.Fatalf("sniff() error: %v", err)
	}

	buf := make([]byte, len(payload))
	n, err := pc.Read(buf)
	if err != nil {
		t.Fatalf("Read() after sniff error: %v", err)
	}
	if string(buf[:n]) != string(payload) {
		t.Errorf("Read() after sniff = %q, want %q (peek must not consume)", buf[:n], payload)
	}
}
