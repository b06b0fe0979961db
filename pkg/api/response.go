package api

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

type (
	// Response is a successful backend response as returned by the HTTP
	// gateway. Body holds JSON, text, or binary content depending on
	// ContentType
	Response struct {
		Status      int
		ContentType string
		Body        []byte
	}

	// NormalizedResponse exposes the canonical entity identifier of a
	// creation response alongside the untouched payload. An empty ID means
	// no known identifier shape was present
	NormalizedResponse struct {
		ID  EntityID        `json:"id,omitempty"`
		Raw json.RawMessage `json:"raw"`
	}
)

const (
	ContentJSON      = "application/json"
	ContentHTML      = "text/html"
	ContentText      = "text/plain"
	ContentOctets    = "application/octet-stream"
	ContentPDF       = "application/pdf"
	ContentOfficeDoc = "application/vnd.openxmlformats"
)

// NoContentBody is the payload substituted for a 204 response
var NoContentBody = []byte(`{"success":true}`)

// IsJSON reports whether the body holds JSON
func (r *Response) IsJSON() bool {
	return strings.Contains(r.ContentType, ContentJSON)
}

// IsBinary reports whether the body holds a file download
func (r *Response) IsBinary() bool {
	return IsBinaryContent(r.ContentType)
}

// JSON parses the body for path queries
func (r *Response) JSON() gjson.Result {
	return gjson.ParseBytes(r.Body)
}

// Get returns the value at the provided gjson path
func (r *Response) Get(path string) gjson.Result {
	return gjson.GetBytes(r.Body, path)
}

// Text returns the body as a string
func (r *Response) Text() string {
	return string(r.Body)
}

// Decode unmarshals a JSON body into v. A body that cannot be decoded is
// reported as an Unknown ErrorRecord
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return &ErrorRecord{
			Kind:       ErrorUnknown,
			Message:    MsgParseFailure,
			HTTPStatus: r.Status,
			Raw:        err.Error(),
		}
	}
	return nil
}

// Get returns the value at the provided gjson path of the raw payload
func (r *NormalizedResponse) Get(path string) gjson.Result {
	return gjson.GetBytes(r.Raw, path)
}

// IsBinaryContent reports whether a content type denotes a file download
func IsBinaryContent(contentType string) bool {
	return strings.Contains(contentType, ContentOctets) ||
		strings.Contains(contentType, ContentPDF) ||
		strings.Contains(contentType, ContentOfficeDoc)
}
