package backend

import (
	"context"
	"strconv"

	"github.com/kode4food/learnable/internal/gateway"
	"github.com/kode4food/learnable/pkg/api"
)

// UnitPlanUpload is a unit plan document attached to a class
type UnitPlanUpload struct {
	ClassID          api.EntityID
	Title            string
	Description      string
	Document         *api.File
	FromCreationFlow bool
}

// DefaultUnitPlanTitle is used when an upload carries no title
const DefaultUnitPlanTitle = "Unit Plan"

// UploadUnitPlan creates a unit plan for a class from a document
func (c *Client) UploadUnitPlan(
	ctx context.Context, u *UnitPlanUpload,
) (*api.NormalizedResponse, error) {
	if u.Document == nil {
		return nil, api.Validation("Missing or invalid document file")
	}
	if u.ClassID.IsZero() {
		return nil, api.Validation(
			"Class ID is missing or invalid. " +
				"Please ensure a class is created first.",
		)
	}

	title := u.Title
	if title == "" {
		title = DefaultUnitPlanTitle
	}
	form := gateway.NewForm().
		WithFile("document", u.Document).
		With("class_instance", u.ClassID.String()).
		With("title", title).
		With("description", u.Description)
	if u.FromCreationFlow {
		form = form.With("from_creation_flow", strconv.FormatBool(true))
	}
	return c.create(ctx, EntityUnitPlan, PathUnitPlans, form)
}

// DeleteUnitPlan removes a unit plan
func (c *Client) DeleteUnitPlan(ctx context.Context, id api.EntityID) error {
	if id.IsZero() {
		return missingID("unit plan")
	}
	return discard(c.gw.Delete(ctx, entityPath(PathUnitPlans, id), nil))
}

// DownloadUnitPlan fetches the document of a unit plan
func (c *Client) DownloadUnitPlan(
	ctx context.Context, id api.EntityID,
) (*api.File, error) {
	if id.IsZero() {
		return nil, missingID("unit plan")
	}
	res, err := c.gw.Get(ctx, entityPath(PathUnitPlans, id, "download"))
	if err != nil {
		return nil, err
	}
	return &api.File{
		Name:        "unit-plan-" + id.String(),
		ContentType: res.ContentType,
		Data:        res.Body,
	}, nil
}
