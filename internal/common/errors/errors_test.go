package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name      string
		err       *Error
		wantKind  Kind
		wantRetry bool
	}{
		{
			name:      "validation error is not retryable",
			err:       NewValidationError(ErrCodeUnknownClient, "unknown client", "acme"),
			wantKind:  KindValidation,
			wantRetry: false,
		},
		{
			name:      "not found error is not retryable",
			err:       NewNotFoundError(ErrCodeClientNotFound, "client", "acme"),
			wantKind:  KindNotFound,
			wantRetry: false,
		},
		{
			name:      "render error is not retryable",
			err:       NewRenderError(ErrCodeRenderFailed, "template execution failed", "missing key"),
			wantKind:  KindRender,
			wantRetry: false,
		},
		{
			name:      "conversion error is retryable",
			err:       NewConversionError(ErrCodeConversionFailed, "backend failed", "soffice exited 1"),
			wantKind:  KindConversion,
			wantRetry: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantKind, KindOf(tt.err))
			assert.Equal(t, tt.wantRetry, IsRetryable(tt.err))
			assert.NotZero(t, tt.err.Timestamp)
		})
	}
}

func TestKindOfWrappedError(t *testing.T) {
	inner := NewNotFoundError(ErrCodeClientNotFound, "client", "acme")
	wrapped := fmt.Errorf("resolving brand: %w", inner)

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Equal(t, ErrCodeClientNotFound, CodeOf(wrapped))
	assert.True(t, IsNotFound(wrapped))
}

func TestKindOfForeignError(t *testing.T) {
	err := stderrors.New("plain error")
	assert.Equal(t, Kind(""), KindOf(err))
	assert.False(t, IsRetryable(err))
}

func TestWithCauseUnwraps(t *testing.T) {
	cause := stderrors.New("exec: soffice: not found")
	err := NewConversionError(ErrCodeNoBackendAvailable, "no backend available", "").WithCause(cause)

	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "NO_BACKEND_AVAILABLE")
}

func TestErrorMessageIncludesDetails(t *testing.T) {
	err := NewConversionError(ErrCodeConversionFailed, "LibreOffice failed", "exit status 77")
	assert.Contains(t, err.Error(), "exit status 77")
}
