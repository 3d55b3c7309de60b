// Package bridge carries LLM requests from the page-facing side to the privileged host
// that owns the credential, and carries exactly one response back per request.
package bridge

import (
	"encoding/json"
	"errors"
)

// ErrBusy is returned when a session already has a call in flight.
var ErrBusy = errors.New("bridge call already in flight")

// Kind selects the LLM task.
type Kind string

const (
	KindAnalysis Kind = "analysis"
	KindPattern  Kind = "pattern"
)

// Message is a request crossing from the page side to the host. It never carries the credential.
type Message struct {
	ID       string `json:"id"`
	Kind     Kind   `json:"kind"`
	Text     string `json:"text"`
	Context  string `json:"context,omitempty"`
	Platform string `json:"platform,omitempty"`
	Revision uint64 `json:"revision,omitempty"`
}

// Response is the host's single answer to a Message. Payload is either the model's JSON
// or an error marker of the form {"error":{"code":N,"message":"..."}}.
type Response struct {
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

type errorMarker struct {
	Error *errorBody `json:"error"`
}

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func errorPayload(code int, message string) json.RawMessage {
	raw, _ := json.Marshal(errorMarker{Error: &errorBody{Code: code, Message: message}})
	return raw
}
