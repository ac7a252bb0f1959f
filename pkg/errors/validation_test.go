package errors

import (
	"testing"
)

func TestValidateNodeName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "leaf1", false},
		{"valid with dash", "antwerp-pe1", false},
		{"valid with underscore", "core_a", false},
		{"valid with dot", "r1.pop3", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"path traversal ..", "foo/../bar", true},
		{"path traversal //", "foo//bar", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
		{"carriage return", "foo\rbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNodeName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNodeName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateInterfaceName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"ethernet", "eth1", false},
		{"chassis port", "1/1/2", false},
		{"breakout child", "1/1/c3/2", false},
		{"lag", "lag-10", false},
		{"with dot", "ge-0.0.1", false},

		{"empty", "", true},
		{"path traversal", "1/../2", true},
		{"spaces", "eth 1", true},
		{"leading slash", "/1/1/2", true},
		{"special chars", "eth@1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInterfaceName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateInterfaceName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateProfileName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "lab", false},
		{"valid with dash", "nsp-staging", false},

		{"empty", "", true},
		{"with path /", "path/to/profile", true},
		{"with path \\", "path\\to\\profile", true},
		{"hidden file", ".hidden", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProfileName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateProfileName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateServerURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://nsp.example.com", false},
		{"http", "http://10.0.0.1:8545", false},

		{"empty", "", true},
		{"ftp", "ftp://example.com", true},
		{"file", "file:///etc/passwd", true},
		{"no scheme", "nsp.example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateServerURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateServerURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "data.clab.yaml", false},
		{"valid nested", "out/lab/topology.clab.yaml", false},
		{"valid with dots", "lab.v2/coords.json", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 600)), true},
		{"path traversal", "../../../etc/passwd", true},
		{"path traversal middle", "foo/../bar", true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidOrientation,
		ErrCodeInvalidStrategy,
		ErrCodeInvalidTopology,
		ErrCodeInvalidServer,
		ErrCodeInvalidPath,
		ErrCodeNotFound,
		ErrCodeFileNotFound,
		ErrCodeProfileNotFound,
		ErrCodeSnapshotNotFound,
		ErrCodeNetwork,
		ErrCodeTimeout,
		ErrCodeUnauthorized,
		ErrCodeForbidden,
		ErrCodeTokenRevoked,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
