package api

import "encoding/json"

// jsonUnmarshal keeps test assertions terse.
func jsonUnmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}
