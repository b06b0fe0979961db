package backend

import (
	"context"

	"github.com/kode4food/learnable/internal/gateway"
	"github.com/kode4food/learnable/pkg/api"
)

// MaterialUpload is a learning material assigned to a class
type MaterialUpload struct {
	Title         string
	Objective     string
	ClassAssigned api.EntityID
	File          *api.File
}

// ListMaterials returns learning materials, optionally restricted to one
// class
func (c *Client) ListMaterials(
	ctx context.Context, classID api.EntityID,
) (*api.Response, error) {
	if classID.IsZero() {
		return c.gw.Get(ctx, PathMaterials)
	}
	return c.gw.Get(ctx, entityPath(PathMaterials+"class/", classID))
}

// CreateMaterial uploads a learning material
func (c *Client) CreateMaterial(
	ctx context.Context, m *MaterialUpload,
) (*api.NormalizedResponse, error) {
	if m.Title == "" {
		return nil, api.Validation("Title is required")
	}
	form := gateway.NewForm().
		WithFile("file", m.File).
		With("title", m.Title).
		With("objective", m.Objective).
		With("class_assigned", m.ClassAssigned.String())
	return c.create(ctx, EntityMaterial, PathMaterials, form)
}

// AdaptMaterial asks the backend to produce adapted versions of a material
func (c *Client) AdaptMaterial(
	ctx context.Context, id api.EntityID,
) (*api.Response, error) {
	if id.IsZero() {
		return nil, missingID("material")
	}
	return c.gw.Post(ctx, entityPath(PathMaterials, id, "adapt"), nil)
}

// DeleteMaterial removes a learning material
func (c *Client) DeleteMaterial(ctx context.Context, id api.EntityID) error {
	if id.IsZero() {
		return missingID("material")
	}
	return discard(c.gw.Delete(ctx, entityPath(PathMaterials, id), nil))
}
