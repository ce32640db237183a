package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		contains []string
	}{
		{
			name:     "transport with cause",
			err:      TransportError("connection refused", fmt.Errorf("dial tcp")),
			contains: []string{"transport", "connection refused", "dial tcp"},
		},
		{
			name:     "upstream status carries body context",
			err:      UpstreamStatusError(503, "service unavailable"),
			contains: []string{"upstream_status", "HTTP 503", "service unavailable"},
		},
		{
			name:     "not found",
			err:      NotFoundError("employee"),
			contains: []string{"not_found", "employee not found"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, want := range tt.contains {
				assert.Contains(t, msg, want)
			}
		})
	}
}

func TestIsType(t *testing.T) {
	err := DecodeError("no schema matched", nil)
	assert.True(t, IsType(err, ErrTypeDecode))
	assert.False(t, IsType(err, ErrTypeTransport))
	assert.False(t, IsType(nil, ErrTypeDecode))
	assert.False(t, IsType(fmt.Errorf("plain"), ErrTypeDecode))
}

func TestIsRecoverable(t *testing.T) {
	assert.True(t, IsRecoverable(TransportError("timeout", nil)))
	assert.True(t, IsRecoverable(UpstreamStatusError(500, "")))
	assert.True(t, IsRecoverable(DecodeError("bad payload", nil)))
	assert.True(t, IsRecoverable(NotFoundError("employee")))

	// Blank identity is programmer error and must not degrade to "no data".
	assert.False(t, IsRecoverable(ValidationError("identity must not be blank")))
	assert.False(t, IsRecoverable(InternalError("boom", nil)))
	assert.False(t, IsRecoverable(nil))
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("root")
	err := TransportError("wrapped", cause)
	assert.Equal(t, cause, err.Unwrap())
}
