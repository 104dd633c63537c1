package errors

import (
	stdErrors "errors"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		publicMsg string
		retryable bool
	}{
		{code: CodeValidation, publicMsg: "validation failed"},
		{code: CodeNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, publicMsg: "conflict detected"},
		{code: CodeStateConflict, publicMsg: "state transition disallowed"},
		{code: CodeInconsistentState, publicMsg: "order created but payment not started"},
		{code: CodeUnconfirmed, publicMsg: "payment not yet confirmed", retryable: true},
		{code: CodeInternal, publicMsg: "internal error", retryable: true},
		{code: CodeDependency, publicMsg: "service unavailable, please try again", retryable: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.PublicMessage != "internal error" {
		t.Fatalf("expected internal metadata, got %q", meta.PublicMessage)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing province")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing province" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	detail := map[string]any{"field": "province"}
	base.WithDetails(detail)
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestRetryableFollowsMetadata(t *testing.T) {
	if Retryable(New(CodeInconsistentState, "order exists, payment url failed")) {
		t.Fatal("inconsistent state must not be blindly retryable")
	}
	if !Retryable(New(CodeDependency, "gateway down")) {
		t.Fatal("dependency errors are retryable by re-invocation")
	}
	if Retryable(stdErrors.New("plain")) {
		t.Fatal("untyped errors are not retryable")
	}
}

func TestHasCode(t *testing.T) {
	err := Wrap(CodeUnconfirmed, stdErrors.New("missing order_id"), "return params")
	if !HasCode(err, CodeUnconfirmed) {
		t.Fatal("expected unconfirmed code")
	}
	if HasCode(err, CodeConflict) {
		t.Fatal("unexpected conflict code")
	}
	if HasCode(nil, CodeConflict) {
		t.Fatal("nil error has no code")
	}
}
