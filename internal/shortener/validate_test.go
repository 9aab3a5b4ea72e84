package shortener

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "https", raw: "https://example.com", wantErr: false},
		{name: "with path and query", raw: "http://example.com/a/b?c=d#e", wantErr: false},
		{name: "ftp with port", raw: "ftp://files.example.com:21/pub", wantErr: false},
		{name: "empty", raw: "", wantErr: true},
		{name: "whitespace", raw: " \t\n", wantErr: true},
		{name: "no scheme", raw: "example.com/path", wantErr: true},
		{name: "relative", raw: "/path", wantErr: true},
		{name: "no host", raw: "https://", wantErr: true},
		{name: "mailto", raw: "mailto:user@example.com", wantErr: true},
		{name: "garbage", raw: "http://[::1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
