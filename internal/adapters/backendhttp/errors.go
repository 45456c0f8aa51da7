package backendhttp

import (
	"encoding/json"
	"strings"
)

type decodedError struct {
	code   string
	reason string
}

// decodeErrorBody understands the error shapes the backend has used over time:
//
//	{"error":"..."}
//	{"error":{"code":"...","message":"..."}}
//	{"message":"..."}
//	{"success":false,"status":409,"reason":"..."}
func decodeErrorBody(raw []byte) decodedError {
	var body struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
		Reason  string          `json:"reason"`
		Code    string          `json:"code"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return decodedError{reason: strings.TrimSpace(string(raw))}
	}

	out := decodedError{code: body.Code}

	if len(body.Error) > 0 {
		var s string
		if err := json.Unmarshal(body.Error, &s); err == nil {
			out.reason = s
		} else {
			var obj struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			}
			if err := json.Unmarshal(body.Error, &obj); err == nil {
				out.reason = obj.Message
				if obj.Code != "" {
					out.code = obj.Code
				}
			}
		}
	}
	if out.reason == "" {
		out.reason = body.Reason
	}
	if out.reason == "" {
		out.reason = body.Message
	}
	return out
}
