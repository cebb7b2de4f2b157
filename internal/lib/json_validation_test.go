package lib

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePostContent(t *testing.T) {
	ctx := context.Background()

	valid := []string{
		`{"type":"text","text":"hello"}`,
		`{"type":"image","url":"https://example.com/a.png","caption":"a"}`,
	}
	for _, content := range valid {
		assert.NoError(t, ValidatePostContent(ctx, json.RawMessage(content)), content)
	}

	invalid := []string{
		`{"text":"missing type"}`,
		`{"type":"audio"}`,
		`{"type":"text"}`,
		`{"type":"video"}`,
		`"just a string"`,
	}
	for _, content := range invalid {
		err := ValidatePostContent(ctx, json.RawMessage(content))
		require.ErrorIs(t, err, ErrInvalidArgument, content)
	}
}

func TestValidateJSON(t *testing.T) {
	keyErrors, err := ValidateJSON(context.Background(), json.RawMessage(`{"n":"x"}`), `{"type":"object","properties":{"n":{"type":"integer"}}}`)
	require.NoError(t, err)
	assert.Len(t, keyErrors, 1)
}
