package domain

import (
	"context"
	"fmt"
	"testing"
)

func TestClassifyRunError_Timeout(t *testing.T) {
	err := fmt.Errorf("solve: %w", context.DeadlineExceeded)
	if got := ClassifyRunError(err); got != KindTimeout {
		t.Fatalf("expected timeout, got=%s", got)
	}
}

func TestClassifyRunError_Canceled(t *testing.T) {
	if got := ClassifyRunError(context.Canceled); got != KindCanceled {
		t.Fatalf("expected canceled, got=%s", got)
	}
}

func TestClassifyRunError_UsesOpErrorKind(t *testing.T) {
	err := Fail("linsys.jacobi", ErrZeroPivot)
	if got := ClassifyRunError(err); got != KindPrecondition {
		t.Fatalf("expected precondition, got=%s", got)
	}
}

func TestNewRunError_Nil(t *testing.T) {
	if NewRunError(nil) != nil {
		t.Fatalf("expected nil run error")
	}
}

func TestProblemResultFailed(t *testing.T) {
	ok := ProblemResult{Assertions: []AssertionResult{{Name: "converged", Passed: true}}}
	if ok.Failed() {
		t.Fatalf("expected passing result")
	}

	failedAssert := ProblemResult{Assertions: []AssertionResult{{Name: "converged", Passed: false}}}
	if !failedAssert.Failed() {
		t.Fatalf("expected failed assertion to fail the problem")
	}

	errored := ProblemResult{Error: &RunError{Kind: KindExhausted, Message: "max"}}
	if !errored.Failed() {
		t.Fatalf("expected error to fail the problem")
	}

	run := RunResult{Results: []ProblemResult{ok, failedAssert, errored}}
	if run.Failures() != 2 {
		t.Fatalf("expected 2 failures, got %d", run.Failures())
	}
}
