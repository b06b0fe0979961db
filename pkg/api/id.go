package api

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

type (
	// EntityID is a backend-assigned identifier. Numeric identifiers are
	// carried in their decimal string form. The empty value means absent
	EntityID string

	// FlowID identifies a running wizard flow
	FlowID string
)

// ErrInvalidEntityID is returned when an identifier is neither a string
// nor a number
var ErrInvalidEntityID = errors.New("invalid entity id")

// NewFlowID returns a new random flow identifier
func NewFlowID() FlowID {
	return FlowID(uuid.NewString())
}

// IsZero reports whether the identifier is absent
func (id EntityID) IsZero() bool {
	return id == ""
}

func (id EntityID) String() string {
	return string(id)
}

// UnmarshalJSON accepts both string and numeric identifiers
func (id *EntityID) UnmarshalJSON(data []byte) error {
	res := gjson.ParseBytes(data)
	switch res.Type {
	case gjson.Null:
		*id = ""
	case gjson.String, gjson.Number:
		*id = EntityID(res.String())
	default:
		return fmt.Errorf("%w: %s", ErrInvalidEntityID, string(data))
	}
	return nil
}
