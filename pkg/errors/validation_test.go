package errors

import "testing"

func TestValidateOutputPath(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"diagram.png", false},
		{"out/diagram.png", false},
		{"/tmp/diagram.png", false},
		{"./a/../diagram.png", false},
		{"", true},
		{"../diagram.png", true},
		{"a/../../diagram.png", true},
		{"dia\x00gram.png", true},
		{"dia\ngram.png", true},
	}

	for _, tt := range tests {
		err := ValidateOutputPath(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateOutputPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
		}
		if err != nil && !Is(err, ErrCodeInvalidPath) {
			t.Errorf("ValidateOutputPath(%q) code = %s, want %s", tt.path, GetCode(err), ErrCodeInvalidPath)
		}
	}
}

func TestValidateDPI(t *testing.T) {
	tests := []struct {
		dpi     int
		wantErr bool
	}{
		{96, false},
		{300, false},
		{1, false},
		{0, true},
		{-72, true},
		{100000, true},
	}

	for _, tt := range tests {
		err := ValidateDPI(tt.dpi)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateDPI(%d) error = %v, wantErr %v", tt.dpi, err, tt.wantErr)
		}
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeDecodeMalformed,
		ErrCodeParseInvalidXML,
		ErrCodeParseNotADiagram,
		ErrCodeParseCorruptModel,
		ErrCodeExportEmptyContent,
		ErrCodeExportDegenerateSize,
		ErrCodeExportEncodeFailed,
		ErrCodeInvalidInput,
		ErrCodeInvalidFormat,
		ErrCodeInvalidConfig,
		ErrCodeInvalidPath,
		ErrCodeFileNotFound,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, c := range codes {
		if seen[c] {
			t.Errorf("duplicate error code: %s", c)
		}
		seen[c] = true
	}
}
