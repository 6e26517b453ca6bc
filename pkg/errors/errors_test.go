package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorFormat(t *testing.T) {
	err := New(CodeFileNotFound, "log file not found").WithContext("path", "/tmp/app.log")

	msg := err.Error()
	if !strings.Contains(msg, "[E101]") {
		t.Errorf("message %q missing code", msg)
	}
	if !strings.Contains(msg, "path=/tmp/app.log") {
		t.Errorf("message %q missing context", msg)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("disk offline")
	err := Wrap(cause, CodeWriteFailed, "failed to save workbook")

	if !errors.Is(err, cause) {
		t.Error("wrapped error should match its cause")
	}
	if !strings.Contains(err.Error(), "disk offline") {
		t.Errorf("message %q missing cause", err.Error())
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, CodeUnknown, "x") != nil {
		t.Error("wrapping nil should return nil")
	}
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", FileNotFound("/tmp/app.log"))

	if !IsCode(err, CodeFileNotFound) {
		t.Error("IsCode should see through wrapping")
	}
	if IsCode(err, CodeParseFailed) {
		t.Error("IsCode matched the wrong code")
	}
	if GetCode(err) != CodeFileNotFound {
		t.Errorf("GetCode = %v, want CodeFileNotFound", GetCode(err))
	}
	if GetCode(fmt.Errorf("plain")) != CodeUnknown {
		t.Error("GetCode on plain error should be CodeUnknown")
	}
}

func TestStackCaptured(t *testing.T) {
	err := New(CodeUnknown, "x")
	if len(err.StackTrace) == 0 {
		t.Fatal("no stack captured")
	}
	if !strings.Contains(err.FormatStack(), "errors_test.go") {
		t.Errorf("stack %q missing test frame", err.FormatStack())
	}
}
