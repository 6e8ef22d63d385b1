package api

import "encoding/json"

// MaxGenerateBody caps the POST /generate body.
const MaxGenerateBody = 1 << 20

// GenerateRequest is the body of POST /generate.
//
// Every field is kept raw so a wrong shape never fails decoding: a
// non-string prompt reads as missing, and toggles or credentials that are
// not JSON objects read as empty.
type GenerateRequest struct {
	// text sent unchanged to every enabled provider
	Prompt json.RawMessage `json:"prompt"`

	// provider id -> whether the caller wants it in this run
	Toggles json.RawMessage `json:"toggles"`

	// credential name -> secret, e.g. {"openai": "sk-..."}
	Credentials json.RawMessage `json:"credentials,omitempty"`

	// Keys is the field name older browser clients send credentials under.
	Keys json.RawMessage `json:"keys,omitempty"`
}

// ListQuery is shared by the history endpoints.
type ListQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
	Days  int `form:"days" binding:"omitempty,min=1,max=365"`
}
