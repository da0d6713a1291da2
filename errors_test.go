package root

import (
	"errors"
	"fmt"
	"testing"
)

func TestStructuredErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType ErrorType
		wantOp   string
		wantMsg  string
		checkFn  func(error) bool
	}{
		{
			name:     "Undeclared Tensor",
			err:      ErrUndeclaredTensor,
			wantType: ErrTypeConfig,
			wantOp:   "ShapeInference",
			wantMsg:  "tensor is not declared in the model",
			checkFn:  IsConfigError,
		},
		{
			name:     "Unsupported Rank",
			err:      ErrUnsupportedRank,
			wantType: ErrTypeShape,
			wantOp:   "ShapeInference",
			wantMsg:  "tensor rank must be 3, 4 or 5",
			checkFn:  IsShapeError,
		},
		{
			name:     "Bad Group",
			err:      ErrBadGroup,
			wantType: ErrTypeConfig,
			wantOp:   "Validate",
			wantMsg:  "group count must divide input and output channels",
			checkFn:  IsConfigError,
		},
		{
			name:     "Non Float",
			err:      ErrNonFloat,
			wantType: ErrTypeConfig,
			wantOp:   "Validate",
			wantMsg:  "only float tensors are supported",
			checkFn:  IsConfigError,
		},
		{
			name:     "Not Implemented",
			err:      NewNotImplementedError("GenerateEvent", "sampling in non-observable variables"),
			wantType: ErrTypeNotImplemented,
			wantOp:   "GenerateEvent",
			wantMsg:  "sampling in non-observable variables is not implemented",
			checkFn:  IsNotImplementedError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e *Error
			if !errors.As(tt.err, &e) {
				t.Fatalf("expected *Error, got %T", tt.err)
			}
			if e.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", e.Type, tt.wantType)
			}
			if e.Op != tt.wantOp {
				t.Errorf("Op = %q, want %q", e.Op, tt.wantOp)
			}
			if e.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", e.Message, tt.wantMsg)
			}
			if !tt.checkFn(tt.err) {
				t.Errorf("type check failed for %v", tt.err)
			}
		})
	}
}

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("underlying cause")
	err := NewConfigError("AddOperator", "bad attribute", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}

	wrapped := fmt.Errorf("outer: %w", err)
	if !IsConfigError(wrapped) {
		t.Error("IsConfigError should see through fmt.Errorf wrapping")
	}
}

func TestErrorMessageFormat(t *testing.T) {
	err := NewShapeError("ConvTranspose", "weight rank mismatch", nil)
	want := "Shape error in ConvTranspose: weight rank mismatch"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	cause := errors.New("boom")
	err = NewCodegenError("Generate", "render failed", cause)
	want = "Codegen error in Generate: render failed (caused by: boom)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
