package restapi

import (
	"bytes"
	"encoding/json"
)

// envelope is the wrapper every endpoint responds with.
type envelope[T any] struct {
	ResponseCode responseCode `json:"response_code"`
	ResponseDesc string       `json:"response_desc"`
	Success      bool         `json:"success"`
	Data         T            `json:"data"`
}

// responseCode accepts the code as a JSON string or number.
type responseCode string

func (c *responseCode) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*c = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = responseCode(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*c = responseCode(n.String())
	return nil
}
