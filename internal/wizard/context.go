package wizard

import (
	"context"
	"maps"
	"strconv"
	"strings"

	"github.com/kode4food/learnable/pkg/api"
)

type (
	// Context is the state accumulated across the steps of one flow
	Context struct {
		EntityID    api.EntityID       `json:"entity_id,omitempty"`
		StepIndex   int                `json:"step_index"`
		LastError   *api.ErrorRecord   `json:"last_error,omitempty"`
		Attachments map[StepKey]Values `json:"attachments"`
	}

	// Values are the form values recorded on one step. A value is a
	// string, a bool, or an *api.File
	Values map[string]any

	// Update is what a successful commit contributes to the Context
	Update struct {
		EntityID    api.EntityID
		Attachments map[StepKey]Values
	}

	confirmedKey struct{}
)

func newContext() *Context {
	return &Context{
		Attachments: map[StepKey]Values{},
	}
}

// Clone returns a deep copy of the Context. Files are shared, as they are
// never mutated once attached
func (c *Context) Clone() *Context {
	res := *c
	res.Attachments = make(map[StepKey]Values, len(c.Attachments))
	for k, v := range c.Attachments {
		res.Attachments[k] = v.Clone()
	}
	if c.LastError != nil {
		e := *c.LastError
		res.LastError = &e
	}
	return &res
}

// Values returns the values recorded on a step, never nil
func (c *Context) Values(key StepKey) Values {
	if v := c.Attachments[key]; v != nil {
		return v
	}
	return Values{}
}

func (c *Context) merge(u *Update) {
	if u == nil {
		return
	}
	if !u.EntityID.IsZero() {
		c.EntityID = u.EntityID
	}
	for k, v := range u.Attachments {
		vals := c.Attachments[k]
		if vals == nil {
			vals = Values{}
			c.Attachments[k] = vals
		}
		maps.Copy(vals, v)
	}
}

// Clone returns a shallow copy of the Values
func (v Values) Clone() Values {
	if v == nil {
		return Values{}
	}
	return maps.Clone(v)
}

// String returns a field as trimmed text. Booleans render as "true" or
// "false" and files as their names
func (v Values) String(field string) string {
	switch val := v[field].(type) {
	case string:
		return strings.TrimSpace(val)
	case bool:
		return strconv.FormatBool(val)
	case *api.File:
		if val != nil {
			return val.Name
		}
	case nil:
	default:
		return strings.TrimSpace(toString(val))
	}
	return ""
}

// Bool returns a field as a boolean. "yes" and "true" count as true
func (v Values) Bool(field string) bool {
	switch val := v[field].(type) {
	case bool:
		return val
	case string:
		s := strings.ToLower(strings.TrimSpace(val))
		return s == "yes" || s == "true"
	default:
		return false
	}
}

// File returns the file attached under field, or nil
func (v Values) File(field string) *api.File {
	f, _ := v[field].(*api.File)
	return f
}

// Confirmed marks ctx as carrying the user's approval to discard a flow
func Confirmed(ctx context.Context) context.Context {
	return context.WithValue(ctx, confirmedKey{}, true)
}

// IsConfirmed reports whether ctx was marked by Confirmed. It is the
// default ConfirmFunc
func IsConfirmed(ctx context.Context) bool {
	v, _ := ctx.Value(confirmedKey{}).(bool)
	return v
}

func toString(v any) string {
	switch val := v.(type) {
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case api.EntityID:
		return val.String()
	default:
		return ""
	}
}
