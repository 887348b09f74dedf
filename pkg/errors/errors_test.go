package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeParseNotADiagram, "missing %s element", "mxGraphModel")

	if err.Code != ErrCodeParseNotADiagram {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeParseNotADiagram)
	}

	if err.Message != "missing mxGraphModel element" {
		t.Errorf("Message = %v, want %v", err.Message, "missing mxGraphModel element")
	}

	expected := "PARSE_NOT_A_DIAGRAM: missing mxGraphModel element"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("illegal base64 data at input byte 4")
	err := Wrap(ErrCodeDecodeMalformed, cause, "decode diagram payload")

	if err.Code != ErrCodeDecodeMalformed {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeDecodeMalformed)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeExportEmptyContent, "test"),
			code:     ErrCodeExportEmptyContent,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeExportEmptyContent, "test"),
			code:     ErrCodeExportDegenerateSize,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeParseInvalidXML, New(ErrCodeInvalidInput, "inner"), "outer"),
			code:     ErrCodeParseInvalidXML,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{"Error type", New(ErrCodeParseCorruptModel, "cycle"), ErrCodeParseCorruptModel},
		{"plain error", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"Error type", New(ErrCodeInvalidInput, "friendly message"), "friendly message"},
		{"with cause", Wrap(ErrCodeParseInvalidXML, errors.New("unexpected EOF"), "invalid XML"), "invalid XML: unexpected EOF"},
		{"plain error", errors.New("plain error"), "plain error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStageClassification(t *testing.T) {
	load := []Code{ErrCodeDecodeMalformed, ErrCodeParseInvalidXML, ErrCodeParseNotADiagram, ErrCodeParseCorruptModel}
	export := []Code{ErrCodeExportEmptyContent, ErrCodeExportDegenerateSize, ErrCodeExportEncodeFailed}

	for _, c := range load {
		err := New(c, "x")
		if !IsLoadError(err) || IsExportError(err) {
			t.Errorf("%s: want load error only", c)
		}
	}
	for _, c := range export {
		err := New(c, "x")
		if IsLoadError(err) || !IsExportError(err) {
			t.Errorf("%s: want export error only", c)
		}
	}
	if IsLoadError(errors.New("plain")) || IsExportError(nil) {
		t.Error("plain and nil errors belong to no stage")
	}
}

func TestTroubleshooting(t *testing.T) {
	tips := Troubleshooting()
	if len(tips) != 3 {
		t.Fatalf("len(Troubleshooting()) = %d, want 3", len(tips))
	}
	if !strings.Contains(tips[0], "Draw.io") {
		t.Errorf("first tip should mention Draw.io: %q", tips[0])
	}
}
