package api

import "encoding/json"

// Envelope is the common response wrapper used by every endpoint:
// {"error": bool, "message": string, "result": ...}
type Envelope struct {
	Message string          `json:"message,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   bool            `json:"error"`
}

// ListResult is the standard paginated list payload carried in Result.
type ListResult struct {
	Items json.RawMessage `json:"items"`
	Count int             `json:"count"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// ErrorResponse represents an error reply body
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// UnwrapList decodes a list payload into dst (a pointer to a slice),
// trying the known envelope shapes in order:
//
//  1. {"result": {"items": [...]}}
//  2. {"result": [...]}
//  3. bare top-level array [...]
//
// Missing or unexpected data degrades to an empty list, never an error:
// dst is left untouched when no shape matches.
func UnwrapList(body []byte, dst any) {
	for _, unwrap := range listShapes {
		if raw, ok := unwrap(body); ok {
			if json.Unmarshal(raw, dst) == nil {
				return
			}
		}
	}
}

// listShapes is the ordered list of extraction strategies for UnwrapList.
var listShapes = []func([]byte) (json.RawMessage, bool){
	resultItemsShape,
	resultArrayShape,
	bareArrayShape,
}

func resultItemsShape(body []byte) (json.RawMessage, bool) {
	var env struct {
		Result struct {
			Items json.RawMessage `json:"items"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, false
	}
	if len(env.Result.Items) == 0 || env.Result.Items[0] != '[' {
		return nil, false
	}
	return env.Result.Items, true
}

func resultArrayShape(body []byte) (json.RawMessage, bool) {
	var env struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, false
	}
	if len(env.Result) == 0 || env.Result[0] != '[' {
		return nil, false
	}
	return env.Result, true
}

func bareArrayShape(body []byte) (json.RawMessage, bool) {
	trimmed := trimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}
	return trimmed, true
}

func trimSpace(b []byte) []byte {
	i := 0
	for i < len(b) && (b[i] == ' ' || b[i] == '\t' || b[i] == '\n' || b[i] == '\r') {
		i++
	}
	return b[i:]
}
