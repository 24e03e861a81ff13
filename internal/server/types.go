package server

import (
	"bytes"
	"net/http"
)

// DefaultBody is the fixed body returned for every request.
const DefaultBody = "Hello, Docker! This is a pure Python web app."

// ResponseTemplate is the status, headers and body written for every request.
// It is built once at startup and never mutated afterwards.
type ResponseTemplate struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// NewResponseTemplate returns a template that owns copies of header and body.
func NewResponseTemplate(status int, header http.Header, body []byte) ResponseTemplate {
	if header == nil {
		header = http.Header{}
	}
	return ResponseTemplate{
		StatusCode: status,
		Header:     header.Clone(),
		Body:       bytes.Clone(body),
	}
}

// DefaultTemplate returns the service's response: 200, text/html, DefaultBody.
func DefaultTemplate() ResponseTemplate {
	return NewResponseTemplate(
		http.StatusOK,
		http.Header{"Content-Type": []string{"text/html"}},
		[]byte(DefaultBody),
	)
}
