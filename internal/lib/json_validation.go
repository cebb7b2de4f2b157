package lib

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/qri-io/jsonschema"
)

// ValidateJSON validates a JSON raw message against a given JSON schema.
// It returns a list of validation errors if the JSON is invalid.
func ValidateJSON(ctx context.Context, content json.RawMessage, schemaString string) ([]jsonschema.KeyError, error) {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(schemaString), rs); err != nil {
		return nil, err
	}

	return rs.ValidateBytes(ctx, content)
}

// PostContentSchema describes the body of a board post: a typed block with
// text for "text" posts and a URL for media posts.
const PostContentSchema = `{
	"type": "object",
	"properties": {
		"type": {"type": "string", "enum": ["text", "image", "video"]},
		"text": {"type": "string"},
		"url": {"type": "string", "format": "uri"},
		"caption": {"type": "string"}
	},
	"required": ["type"],
	"allOf": [
		{
			"if": {"properties": {"type": {"const": "text"}}},
			"then": {"required": ["text"]}
		},
		{
			"if": {"properties": {"type": {"enum": ["image", "video"]}}},
			"then": {"required": ["url"]}
		}
	]
}`

var (
	postContentSchema     *jsonschema.Schema
	postContentSchemaErr  error
	postContentSchemaOnce sync.Once
)

// ValidatePostContent checks content against PostContentSchema and reports
// violations as ErrInvalidArgument.
func ValidatePostContent(ctx context.Context, content json.RawMessage) error {
	postContentSchemaOnce.Do(func() {
		postContentSchema = &jsonschema.Schema{}
		postContentSchemaErr = json.Unmarshal([]byte(PostContentSchema), postContentSchema)
	})
	if postContentSchemaErr != nil {
		return postContentSchemaErr
	}

	keyErrors, err := postContentSchema.ValidateBytes(ctx, content)
	if err != nil {
		return fmt.Errorf("%w: content is not valid JSON", ErrInvalidArgument)
	}
	if len(keyErrors) == 0 {
		return nil
	}

	messages := make([]string, 0, len(keyErrors))
	for _, keyError := range keyErrors {
		messages = append(messages, fmt.Sprintf("%s: %s", keyError.PropertyPath, keyError.Message))
	}
	return fmt.Errorf("%w: %s", ErrInvalidArgument, strings.Join(messages, "; "))
}
