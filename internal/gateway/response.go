package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/kode4food/learnable/pkg/api"
)

const htmlExcerptLen = 500

var (
	htmlTitle = regexp.MustCompile(`(?is)<title>(.*?)</title>`)

	messageFields = []string{"message", "error", "detail"}
)

func readResponse(resp *http.Response) (*api.Response, error) {
	status := resp.StatusCode
	if status == http.StatusNoContent {
		return &api.Response{
			Status:      status,
			ContentType: api.ContentJSON,
			Body:        api.NoContentBody,
		}, nil
	}

	ok := status >= 200 && status < 300
	ct := resp.Header.Get("Content-Type")
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if ok {
			return nil, parseFailure(status, err)
		}
		return nil, &api.ErrorRecord{
			Kind:       classify(status),
			Message:    api.MsgGenericError,
			HTTPStatus: status,
		}
	}

	switch {
	case strings.Contains(ct, api.ContentJSON):
		if !gjson.ValidBytes(data) {
			if ok {
				return nil, parseFailure(status, nil)
			}
			return nil, failure(status, data, false)
		}
		if !ok {
			return nil, failure(status, data, true)
		}

	case strings.Contains(ct, api.ContentHTML):
		kind := api.ErrorServerError
		if classify(status) == api.ErrorAuth {
			kind = api.ErrorAuth
		}
		return nil, &api.ErrorRecord{
			Kind:       kind,
			Message:    titleOf(data),
			HTTPStatus: status,
			Raw:        excerpt(data),
		}

	default:
		if !ok {
			return nil, failure(status, data, false)
		}
		if ct == "" {
			ct = api.ContentText
		}
	}

	return &api.Response{
		Status:      status,
		ContentType: ct,
		Body:        data,
	}, nil
}

func failure(status int, data []byte, isJSON bool) *api.ErrorRecord {
	rec := &api.ErrorRecord{
		Kind:       classify(status),
		Message:    messageOf(data, isJSON),
		HTTPStatus: status,
	}
	if isJSON {
		rec.Raw = json.RawMessage(data)
	} else if len(data) > 0 {
		rec.Raw = string(data)
	}
	return rec
}

func parseFailure(status int, err error) *api.ErrorRecord {
	rec := &api.ErrorRecord{
		Kind:       api.ErrorUnknown,
		Message:    api.MsgParseFailure,
		HTTPStatus: status,
	}
	if err != nil {
		rec.Raw = err.Error()
	}
	return rec
}

func classify(status int) api.ErrorKind {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return api.ErrorAuth
	case status == http.StatusBadRequest,
		status == http.StatusUnprocessableEntity:
		return api.ErrorValidation
	case status >= http.StatusInternalServerError:
		return api.ErrorServerError
	default:
		return api.ErrorUnknown
	}
}

// messageOf selects a failure message: message, error, then detail fields
// of a JSON object, then the payload itself when it is a plain string
func messageOf(data []byte, isJSON bool) string {
	if !isJSON {
		if s := strings.TrimSpace(string(data)); s != "" {
			return s
		}
		return api.MsgGenericError
	}

	res := gjson.ParseBytes(data)
	switch {
	case res.IsObject():
		for _, f := range messageFields {
			v := res.Get(f)
			if !v.Exists() || v.Type == gjson.Null {
				continue
			}
			if msg := strings.TrimSpace(valueText(v)); msg != "" {
				return msg
			}
		}
	case res.Type == gjson.String:
		if s := strings.TrimSpace(res.String()); s != "" {
			return s
		}
	}
	return api.MsgGenericError
}

func valueText(v gjson.Result) string {
	if v.Type == gjson.String {
		return v.String()
	}
	if v.IsArray() {
		var parts []string
		for _, e := range v.Array() {
			parts = append(parts, valueText(e))
		}
		return strings.Join(parts, " ")
	}
	return v.Raw
}

func titleOf(data []byte) string {
	m := htmlTitle.FindSubmatch(data)
	if len(m) == 2 {
		if t := strings.TrimSpace(string(m[1])); t != "" {
			return t
		}
	}
	return api.MsgHTMLResponse
}

func excerpt(data []byte) string {
	r := []rune(string(data))
	if len(r) <= htmlExcerptLen {
		return string(r)
	}
	return string(r[:htmlExcerptLen]) + "..."
}
