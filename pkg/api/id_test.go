package api_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/learnable/pkg/api"
)

func TestEntityIDUnmarshal(t *testing.T) {
	var class api.Class
	err := json.Unmarshal(
		[]byte(`{"id":101,"class_name":"Math 9B"}`), &class,
	)
	require.NoError(t, err)
	assert.Equal(t, api.EntityID("101"), class.ID)

	err = json.Unmarshal([]byte(`{"id":"abc"}`), &class)
	require.NoError(t, err)
	assert.Equal(t, api.EntityID("abc"), class.ID)

	err = json.Unmarshal([]byte(`{"id":null}`), &class)
	require.NoError(t, err)
	assert.True(t, class.ID.IsZero())

	err = json.Unmarshal([]byte(`{"id":{"nested":1}}`), &class)
	assert.ErrorIs(t, err, api.ErrInvalidEntityID)
}

func TestNewFlowID(t *testing.T) {
	a := api.NewFlowID()
	b := api.NewFlowID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
