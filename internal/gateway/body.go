package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"slices"
	"strings"

	"github.com/kode4food/learnable/pkg/api"
)

type (
	// Body is a request payload. Encode is called once per attempt, so a
	// Body can be resent after a token refresh
	Body interface {
		Encode() (io.Reader, string, error)
	}

	// Form is an ordered multipart/form-data body. The content type,
	// including its boundary, comes from the multipart writer
	Form struct {
		parts []formPart
	}

	formPart struct {
		name  string
		value string
		file  *api.File
	}

	jsonBody struct {
		value any
	}
)

// JSON returns a Body that serializes v as application/json
func JSON(v any) Body {
	return jsonBody{value: v}
}

func (b jsonBody) Encode() (io.Reader, string, error) {
	data, err := json.Marshal(b.value)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewReader(data), api.ContentJSON, nil
}

// NewForm returns an empty multipart Form
func NewForm() *Form {
	return &Form{}
}

// With returns a copy of the Form with a text field appended
func (f *Form) With(name, value string) *Form {
	return f.append(formPart{name: name, value: value})
}

// WithFile returns a copy of the Form with a file part appended. A nil
// file leaves the Form unchanged
func (f *Form) WithFile(name string, file *api.File) *Form {
	if file == nil {
		return f
	}
	return f.append(formPart{name: name, file: file})
}

// Keys returns the part names in insertion order
func (f *Form) Keys() []string {
	res := make([]string, len(f.parts))
	for i, p := range f.parts {
		res[i] = p.name
	}
	return res
}

// Value returns the first text value recorded under name
func (f *Form) Value(name string) (string, bool) {
	for _, p := range f.parts {
		if p.name == name && p.file == nil {
			return p.value, true
		}
	}
	return "", false
}

func (f *Form) Encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range f.parts {
		if err := writePart(w, p); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func (f *Form) append(p formPart) *Form {
	res := *f
	res.parts = append(slices.Clone(f.parts), p)
	return &res
}

func writePart(w *multipart.Writer, p formPart) error {
	if p.file == nil {
		return w.WriteField(p.name, p.value)
	}

	ct := p.file.ContentType
	if ct == "" {
		ct = api.ContentOctets
	}
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(
		`form-data; name="%s"; filename="%s"`,
		escapeQuotes(p.name), escapeQuotes(p.file.Name),
	))
	h.Set("Content-Type", ct)

	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(p.file.Data)
	return err
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func formServerError(f *Form) string {
	return "Server error (500) processing form submission. " +
		"Check if all required fields are present: " +
		strings.Join(f.Keys(), ", ")
}
