package llm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"basegraph.app/helixask/common/llm"
)

func TestIsRetryable(t *testing.T) {
	ctx := context.Background()

	assert.False(t, llm.IsRetryable(ctx, nil))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.False(t, llm.IsRetryable(cancelled, context.Canceled))

	assert.True(t, llm.IsRetryable(ctx, errors.New("dial tcp: connection refused")))
}

func TestIsContextOverflow(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"context length message", errors.New("this model's maximum context length is 8192 tokens"), true},
		{"prompt too long", errors.New("prompt too long for model"), true},
		{"unrelated error", errors.New("invalid api key"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, llm.IsContextOverflow(tc.err))
		})
	}
}
