package gateway

import (
	"errors"
	"testing"
)

func TestConfigError_Is(t *testing.T) {
	t.Parallel()

	err := &ConfigError{Err: errors.New("bad field")}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Error("errors.Is(ConfigError, ErrInvalidConfig) = false, want true")
	}
}

func TestConfigError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("bad field")
	err := &ConfigError{Err: cause}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(ConfigError, cause) = false, want true")
	}
}

func TestListenError_Message(t *testing.T) {
	t.Parallel()

	err := &ListenError{Addr: "127.0.0.1:0", Err: errors.New("address in use")}
	want := "gateway: listen on 127.0.0.1:0: address in use"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestTLSError_Message(t *testing.T) {
	t.Parallel()

	err := &TLSError{Err: errors.New("decode pfx: bad magic")}
	want := "gateway: tls setup: decode pfx: bad magic"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
