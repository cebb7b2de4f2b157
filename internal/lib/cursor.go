package lib

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/bytedance/sonic"
)

// Kind identifies the type of the sort value carried by a cursor.
type Kind string

const (
	KindString Kind = "s"
	KindInt    Kind = "i"
	KindFloat  Kind = "f"
	KindTime   Kind = "t"
	KindBool   Kind = "b"
)

// Cursor is the decoded form of a pagination token: the sort value of the
// last row of a page and that row's integer id.
type Cursor struct {
	Kind         Kind
	SortValue    any
	TieBreakerID int64
}

type cursorPayload struct {
	Kind  Kind            `json:"k"`
	Value json.RawMessage `json:"v"`
	ID    *int64          `json:"id"`
}

// EncodeCursor produces an opaque URL-safe token. The token is only meant to
// be decoded; its lexical value says nothing about ordering.
func EncodeCursor(sortValue any, tieBreakerID int64) (string, error) {
	kind, value, err := normalizeSortValue(sortValue)
	if err != nil {
		return "", err
	}

	raw, err := sonic.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("encode cursor value: %w", err)
	}

	b, err := sonic.Marshal(cursorPayload{Kind: kind, Value: raw, ID: &tieBreakerID})
	if err != nil {
		return "", fmt.Errorf("encode cursor: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

// DecodeCursor parses a token produced by EncodeCursor. Any failure is
// reported as ErrMalformedCursor.
func DecodeCursor(token string) (Cursor, error) {
	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: %v", ErrMalformedCursor, err)
	}

	var payload cursorPayload
	if err := sonic.Unmarshal(b, &payload); err != nil {
		return Cursor{}, fmt.Errorf("%w: %v", ErrMalformedCursor, err)
	}
	if payload.ID == nil || len(payload.Value) == 0 {
		return Cursor{}, fmt.Errorf("%w: incomplete payload", ErrMalformedCursor)
	}

	var value any
	switch payload.Kind {
	case KindString:
		var s string
		err = sonic.Unmarshal(payload.Value, &s)
		value = s
	case KindInt:
		var n int64
		err = sonic.Unmarshal(payload.Value, &n)
		value = n
	case KindFloat:
		var f float64
		err = sonic.Unmarshal(payload.Value, &f)
		value = f
	case KindBool:
		var v bool
		err = sonic.Unmarshal(payload.Value, &v)
		value = v
	case KindTime:
		var s string
		if err = sonic.Unmarshal(payload.Value, &s); err == nil {
			value, err = time.Parse(time.RFC3339Nano, s)
		}
	default:
		return Cursor{}, fmt.Errorf("%w: unknown kind %q", ErrMalformedCursor, payload.Kind)
	}
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: %v", ErrMalformedCursor, err)
	}

	return Cursor{
		Kind:         payload.Kind,
		SortValue:    value,
		TieBreakerID: *payload.ID,
	}, nil
}

func normalizeSortValue(v any) (Kind, any, error) {
	switch v := v.(type) {
	case string:
		return KindString, v, nil
	case int:
		return KindInt, int64(v), nil
	case int8:
		return KindInt, int64(v), nil
	case int16:
		return KindInt, int64(v), nil
	case int32:
		return KindInt, int64(v), nil
	case int64:
		return KindInt, v, nil
	case uint8:
		return KindInt, int64(v), nil
	case uint16:
		return KindInt, int64(v), nil
	case uint32:
		return KindInt, int64(v), nil
	case uint:
		if uint64(v) > math.MaxInt64 {
			return "", nil, fmt.Errorf("cursor value %d overflows int64", v)
		}
		return KindInt, int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return "", nil, fmt.Errorf("cursor value %d overflows int64", v)
		}
		return KindInt, int64(v), nil
	case float32:
		return KindFloat, float64(v), nil
	case float64:
		return KindFloat, v, nil
	case bool:
		return KindBool, v, nil
	case time.Time:
		return KindTime, v.Format(time.RFC3339Nano), nil
	default:
		return "", nil, fmt.Errorf("unsupported cursor value type %T", v)
	}
}
