package api

import (
	"encoding/json"
	"fmt"
)

// Envelope is the wire format every backend response uses:
// { "success": bool, "message": "...", "data": ... }.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Decode unmarshals the envelope's data payload into v.
func (e *Envelope) Decode(v interface{}) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("envelope has no data")
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("decode envelope data failed: %w", err)
	}
	return nil
}
