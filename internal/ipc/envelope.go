// Package ipc implements the daemon's control protocol: newline-delimited
// JSON envelopes over a Unix domain socket. Clients send request
// envelopes and receive a response per request; subscribed clients
// additionally receive event envelopes pushed by the daemon.
package ipc

import (
	"encoding/json"
	"time"
)

// MessageEnvelope is the top-level message structure for all traffic on
// the control socket.
type MessageEnvelope struct {
	Type     string    `json:"type"` // "request", "response", or "event"
	Request  *Request  `json:"request,omitempty"`
	Response *Response `json:"response,omitempty"`
	Event    *Event    `json:"event,omitempty"`
}

// Request is an RPC request. Method is either a built-in ("ping",
// "status", "subscribe") or a command method understood by
// command.Decode.
type Request struct {
	ID     string                 `json:"id"`
	Method string                 `json:"method"`
	Params map[string]interface{} `json:"params,omitempty"`
}

// Response answers the request with the matching ID.
type Response struct {
	ID     string                 `json:"id"`
	Result map[string]interface{} `json:"result,omitempty"`
	Error  *ErrorInfo             `json:"error,omitempty"`
}

// ErrorInfo carries a failed request's error.
type ErrorInfo struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error codes on the wire.
const (
	CodeBadRequest    = 400
	CodeUnknownMethod = 404
	CodeInternal      = 500
)

// Event is pushed to subscribed clients, carrying visualizer state.
type Event struct {
	EventType string                 `json:"eventType"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// NewRequest builds a request envelope.
func NewRequest(id, method string, params map[string]interface{}) *MessageEnvelope {
	return &MessageEnvelope{
		Type:    "request",
		Request: &Request{ID: id, Method: method, Params: params},
	}
}

// NewResponse builds a success response envelope.
func NewResponse(id string, result map[string]interface{}) *MessageEnvelope {
	return &MessageEnvelope{
		Type:     "response",
		Response: &Response{ID: id, Result: result},
	}
}

// NewErrorResponse builds an error response envelope.
func NewErrorResponse(id string, code int, message string) *MessageEnvelope {
	return &MessageEnvelope{
		Type:     "response",
		Response: &Response{ID: id, Error: &ErrorInfo{Code: code, Message: message}},
	}
}

// NewEvent builds an event envelope stamped with the current time.
func NewEvent(eventType string, data map[string]interface{}) *MessageEnvelope {
	return &MessageEnvelope{
		Type:  "event",
		Event: &Event{EventType: eventType, Data: data, Timestamp: time.Now()},
	}
}

// IsError reports whether the response carries an error.
func (r *Response) IsError() bool {
	return r.Error != nil
}

// GetError returns the error message, or "" for a success response.
func (r *Response) GetError() string {
	if r.Error != nil {
		return r.Error.Message
	}
	return ""
}

// toMap converts a JSON-marshalable value into the generic map shape
// used by Result and Data fields.
func toMap(v interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
