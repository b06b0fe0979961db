package gateway

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/kode4food/learnable/pkg/api"
)

// Normalize extracts the canonical identifier of a creation response. For
// an entity named "class" the paths searched, in order, are id, class_id,
// classId, pk, data.id, and class_data.id. Zero, empty, false, and null
// values count as absent. The payload is always kept intact
func Normalize(entity string, res *api.Response) *api.NormalizedResponse {
	out := &api.NormalizedResponse{Raw: rawPayload(res)}
	if !gjson.ValidBytes(out.Raw) {
		return out
	}
	for _, path := range IDPaths(entity) {
		if v := gjson.GetBytes(out.Raw, path); isPresent(v) {
			out.ID = api.EntityID(v.String())
			return out
		}
	}
	return out
}

// IDPaths returns the identifier paths searched for entity, in order
func IDPaths(entity string) []string {
	if entity == "" {
		return []string{"id", "pk", "data.id"}
	}
	return []string{
		"id",
		entity + "_id",
		camelCase(entity) + "Id",
		"pk",
		"data.id",
		entity + "_data.id",
	}
}

func rawPayload(res *api.Response) json.RawMessage {
	if res == nil || len(res.Body) == 0 {
		return json.RawMessage("null")
	}
	if gjson.ValidBytes(res.Body) {
		return json.RawMessage(res.Body)
	}
	data, _ := json.Marshal(string(res.Body))
	return data
}

func isPresent(v gjson.Result) bool {
	switch v.Type {
	case gjson.String:
		return v.String() != ""
	case gjson.Number:
		return v.Float() != 0
	default:
		return false
	}
}

func camelCase(s string) string {
	parts := strings.Split(s, "_")
	for i := 1; i < len(parts); i++ {
		if p := parts[i]; p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, "")
}
