package gateway_test

import (
	"io"
	"mime"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/learnable/internal/gateway"
	"github.com/kode4food/learnable/pkg/api"
)

func TestFormImmutable(t *testing.T) {
	base := gateway.NewForm().With("title", "Unit Plan")
	a := base.With("description", "Term 1")
	b := base.WithFile("document", &api.File{Name: "plan.pdf"})

	assert.Equal(t, []string{"title"}, base.Keys())
	assert.Equal(t, []string{"title", "description"}, a.Keys())
	assert.Equal(t, []string{"title", "document"}, b.Keys())
	assert.Same(t, base, base.WithFile("document", nil))

	v, ok := a.Value("description")
	assert.True(t, ok)
	assert.Equal(t, "Term 1", v)
	_, ok = b.Value("document")
	assert.False(t, ok)
}

func TestFormEncodeTwice(t *testing.T) {
	form := gateway.NewForm().
		With("student", "5").
		WithFile("evidence", &api.File{
			Name: `report "final".pdf`,
			Data: []byte("%PDF"),
		})

	for range 2 {
		r, ct, err := form.Encode()
		require.NoError(t, err)

		mt, params, err := mime.ParseMediaType(ct)
		require.NoError(t, err)
		assert.Equal(t, "multipart/form-data", mt)

		mr := multipart.NewReader(r, params["boundary"])
		p, err := mr.NextPart()
		require.NoError(t, err)
		assert.Equal(t, "student", p.FormName())
		data, _ := io.ReadAll(p)
		assert.Equal(t, "5", string(data))

		p, err = mr.NextPart()
		require.NoError(t, err)
		assert.Equal(t, "evidence", p.FormName())
		assert.Equal(t, `report "final".pdf`, p.FileName())
		assert.Equal(t, api.ContentOctets, p.Header.Get("Content-Type"))
		data, _ = io.ReadAll(p)
		assert.Equal(t, "%PDF", string(data))

		_, err = mr.NextPart()
		assert.ErrorIs(t, err, io.EOF)
	}
}

func TestJSONBody(t *testing.T) {
	r, ct, err := gateway.JSON(map[string]int{"student_id": 4}).Encode()
	require.NoError(t, err)
	assert.Equal(t, api.ContentJSON, ct)
	data, _ := io.ReadAll(r)
	assert.JSONEq(t, `{"student_id":4}`, string(data))

	_, _, err = gateway.JSON(make(chan int)).Encode()
	assert.Error(t, err)
}
