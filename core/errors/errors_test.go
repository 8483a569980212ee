package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNewCarriesCode(t *testing.T) {
	err := New(CodeInvalidArgument, "bad blueprint key")
	if CodeOf(err) != CodeInvalidArgument {
		t.Fatalf("CodeOf = %q, want %q", CodeOf(err), CodeInvalidArgument)
	}
	if !strings.Contains(err.Error(), "bad blueprint key") {
		t.Fatalf("message lost: %q", err.Error())
	}
}

func TestWrapPreservesChain(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(CodeUnavailable, "store.ping", cause)

	if !stderrors.Is(err, cause) {
		t.Fatal("wrapped error should match its cause via errors.Is")
	}
	if CodeOf(err) != CodeUnavailable {
		t.Fatalf("CodeOf = %q, want %q", CodeOf(err), CodeUnavailable)
	}

	var e *E
	if !As(err, &e) {
		t.Fatal("As should find *E in the chain")
	}
	if e.Op != "store.ping" {
		t.Fatalf("Op = %q, want store.ping", e.Op)
	}
}

func TestWrapfFormatsMessage(t *testing.T) {
	cause := stderrors.New("boom")
	err := Wrapf(CodeFailedSetup, "render.setup", cause, "engine %q", "mako")
	if !strings.Contains(err.Error(), `engine "mako"`) {
		t.Fatalf("formatted message missing: %q", err.Error())
	}
}

func TestNotFoundKey(t *testing.T) {
	err := NotFoundKey("i18n.lang")
	if !IsCode(err, CodeNotFound) {
		t.Fatal("NotFoundKey should carry CodeNotFound")
	}
	if !strings.Contains(err.Error(), "i18n.lang") {
		t.Fatalf("key missing from message: %q", err.Error())
	}
}

func TestCodeOfForeignError(t *testing.T) {
	if CodeOf(fmt.Errorf("plain")) != "" {
		t.Fatal("plain errors should have no code")
	}
	if CodeOf(nil) != "" {
		t.Fatal("nil error should have no code")
	}
}

func TestCodeOfWrappedForeign(t *testing.T) {
	inner := New(CodeNotFound, "missing")
	outer := fmt.Errorf("resolving view: %w", inner)
	if CodeOf(outer) != CodeNotFound {
		t.Fatal("CodeOf should unwrap through fmt.Errorf")
	}
}
