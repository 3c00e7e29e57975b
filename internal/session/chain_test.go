package session

import (
	"context"
	"errors"
	"testing"
)

func dispatcherRecording(name string, order *[]string) DispatcherFunc {
	return func(ctx context.Context, req *Request, sess *Session) error {
		*order = append(*order, name)
		return nil
	}
}

func TestChain_Run_InOrder(t *testing.T) {
	var order []string
	chain := NewChain(
		dispatcherRecording("a", &order),
		dispatcherRecording("b", &order),
		dispatcherRecording("c", &order),
	)
	sess := &Session{Abortion: NewAbortion()}

	if err := chain.Run(context.Background(), &Request{}, sess); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	want := []string{"a", "b", "c"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
	if chain.Index() != 3 {
		t.Errorf("Index() = %d, want 3", chain.Index())
	}
}

func TestChain_Run_StopsOnError(t *testing.T) {
	var order []string
	failing := errors.New("dispatcher failed")
	chain := NewChain(
		dispatcherRecording("a", &order),
		DispatcherFunc(func(ctx context.Context, req *Request, sess *Session) error { return failing }),
		dispatcherRecording("c", &order),
	)
	sess := &Session{Abortion: NewAbortion()}

	err := chain.Run(context.Background(), &Request{}, sess)
	if !errors.Is(err, failing) {
		t.Errorf("Run() error = %v, want %v", err, failing)
	}
	if len(order) != 1 || order[0] != "a" {
		t.Errorf("order = %v, want [a] (chain must stop at failure)", order)
	}
}

func TestChain_Run_StopsOnAbort(t *testing.T) {
	var order []string
	sess := &Session{Abortion: NewAbortion()}
	sess.Abortion.Abort(errors.New("aborted early"))

	chain := NewChain(dispatcherRecording("a", &order))
	if err := chain.Run(context.Background(), &Request{}, sess); err != nil {
		t.Fatalf("Run() error: %v, want nil (abort stops without error)", err)
	}
	if len(order) != 0 {
		t.Errorf("order = %v, want empty (aborted chain must not dispatch)", order)
	}
}

func TestChain_Splice_DedupesAgainstExisting(t *testing.T) {
	var order []string
	a := dispatcherRecording("a", &order)
	chain := NewChain(a)

	chain.Splice(a, dispatcherRecording("b", &order))
	sess := &Session{Abortion: NewAbortion()}

	if err := chain.Run(context.Background(), &Request{}, sess); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	want := []string{"a", "b"}
	if len(order) != len(want) || order[0] != want[0] || order[1] != want[1] {
		t.Errorf("order = %v, want %v (duplicate insertion must be dropped)", order, want)
	}
}

func TestChain_Splice_InsertsAfterCursor(t *testing.T) {
	var order []string
	var chain *Chain
	var spliceOnce DispatcherFunc
	spliced := false
	spliceOnce = func(ctx context.Context, req *Request, sess *Session) error {
		order = append(order, "spliced-in")
		if !spliced {
			spliced = true
			chain.Splice(dispatcherRecording("after", &order))
		}
		return nil
	}
	chain = NewChain(DispatcherFunc(spliceOnce), dispatcherRecording("tail", &order))
	sess := &Session{Abortion: NewAbortion()}

	if err := chain.Run(context.Background(), &Request{}, sess); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	want := []string{"spliced-in", "after", "tail"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestChain_Run_EmptyChain(t *testing.T) {
	chain := NewChain()
	sess := &Session{Abortion: NewAbortion()}
	if err := chain.Run(context.Background(), &Request{}, sess); err != nil {
		t.Fatalf("Run() on empty chain error: %v, want nil", err)
	}
}
