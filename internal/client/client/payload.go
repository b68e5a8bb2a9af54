package client

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// unwrapPayload applies the backend's envelope rule: a top-level array is
// returned as is; an object whose "data" field is an array yields that array;
// anything else is returned unchanged. An empty body yields nil.
func unwrapPayload(raw []byte) []byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}

	if trimmed[0] == '{' {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if json.Unmarshal(trimmed, &env) == nil {
			if data := bytes.TrimSpace(env.Data); len(data) > 0 && data[0] == '[' {
				return data
			}
		}
	}

	return trimmed
}

// decodeInto unwraps raw and decodes it into out. A nil out or an empty
// payload is not an error.
func decodeInto(raw []byte, out any) error {
	if out == nil {
		return nil
	}
	payload := unwrapPayload(raw)
	if payload == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
