package storeapi

import (
	"bytes"
	"encoding/json"
	"fmt"

	"storefront/internal/model"
)

// shape is how a backend response body wraps its payload.
type shape int

const (
	shapeEmpty shape = iota
	shapeBare
	shapeEnvelope
)

// payload is a response body after classification. Only data is passed on;
// shape never leaves this package.
type payload struct {
	shape   shape
	data    json.RawMessage
	message string
}

// classify decides once whether body is a {success, data} envelope or a bare
// value. An envelope with success=false is a rejection even on a 2xx status.
func classify(body []byte) (payload, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return payload{shape: shapeEmpty}, nil
	}
	if body[0] != '{' {
		return payload{shape: shapeBare, data: body}, nil
	}

	var env struct {
		Success *bool           `json:"success"`
		Data    json.RawMessage `json:"data"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return payload{}, fmt.Errorf("parsing response: %w", err)
	}
	if env.Success == nil {
		return payload{shape: shapeBare, data: body, message: env.Message}, nil
	}
	if !*env.Success {
		return payload{}, model.NewRejectedError(env.Message)
	}

	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return payload{shape: shapeEnvelope, message: env.Message}, nil
	}
	return payload{shape: shapeEnvelope, data: data, message: env.Message}, nil
}

func (p payload) empty() bool {
	return len(p.data) == 0
}

// decodeList unmarshals a list payload into out. The list may be the payload
// itself or sit under one of keys; a key holding an object is searched again
// with the same keys.
func decodeList(data json.RawMessage, out any, keys ...string) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	if data[0] == '[' {
		return json.Unmarshal(data, out)
	}
	if data[0] != '{' {
		return fmt.Errorf("expected list, got %.20s", data)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	for _, key := range keys {
		if inner, ok := obj[key]; ok {
			return decodeList(inner, out, keys...)
		}
	}
	return fmt.Errorf("expected list under %v", keys)
}

// decodeObject unmarshals an object payload into out, unwrapping it from key
// when the backend nests it there.
func decodeObject(data json.RawMessage, out any, key string) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	if key != "" && data[0] == '{' {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		if inner, ok := obj[key]; ok && len(bytes.TrimSpace(inner)) > 0 && bytes.TrimSpace(inner)[0] == '{' {
			data = inner
		}
	}
	return json.Unmarshal(data, out)
}
