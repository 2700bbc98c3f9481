package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidOptions, "unit edge length must be positive, got %g", -1.5)

	if err.Code != ErrCodeInvalidOptions {
		t.Errorf("Code = %q, want %q", err.Code, ErrCodeInvalidOptions)
	}
	want := "INVALID_OPTIONS: unit edge length must be positive, got -1.5"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(ErrCodeInternal, cause, "write drawing")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match cause with errors.Is")
	}
	if err.Unwrap() != cause {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), cause)
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeEmptyCollection, "sampling set is empty")

	if !Is(err, ErrCodeEmptyCollection) {
		t.Error("Is() should match the error's own code")
	}
	if Is(err, ErrCodeNotFound) {
		t.Error("Is() should not match a different code")
	}
	if Is(stderrors.New("plain"), ErrCodeEmptyCollection) {
		t.Error("Is() should not match a plain error")
	}
}

func TestIs_WrappedChain(t *testing.T) {
	inner := New(ErrCodeIndexOutOfRange, "row 5 out of range [0,3)")
	outer := fmt.Errorf("grid access: %w", inner)

	if !Is(outer, ErrCodeIndexOutOfRange) {
		t.Error("Is() should unwrap fmt.Errorf chains")
	}
	if GetCode(outer) != ErrCodeIndexOutOfRange {
		t.Errorf("GetCode() = %q, want %q", GetCode(outer), ErrCodeIndexOutOfRange)
	}
}

func TestGetCode_PlainError(t *testing.T) {
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode() = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeInvalidGraph, "graph has no nodes")
	if got := UserMessage(err); got != "graph has no nodes" {
		t.Errorf("UserMessage() = %q, want %q", got, "graph has no nodes")
	}

	plain := stderrors.New("boom")
	if got := UserMessage(plain); got != "boom" {
		t.Errorf("UserMessage() = %q, want %q", got, "boom")
	}
}
