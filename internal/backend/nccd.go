package backend

import (
	"context"
	"strconv"

	"github.com/kode4food/learnable/internal/gateway"
	"github.com/kode4food/learnable/pkg/api"
)

// NCCDSubmission is the form sent when creating or updating an NCCD report
type NCCDSubmission struct {
	Student            api.EntityID
	HasEvidence        bool
	LevelOfAdjustment  string
	DisabilityCategory string
	UnderDDA           bool
	AdditionalComments string
	Status             string
	Evidence           *api.File
}

// ListNCCDReports returns every NCCD report
func (c *Client) ListNCCDReports(
	ctx context.Context,
) ([]*api.NCCDReport, error) {
	var res []*api.NCCDReport
	if err := c.getJSON(ctx, PathNCCD, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// GetNCCDReport returns one NCCD report
func (c *Client) GetNCCDReport(
	ctx context.Context, id api.EntityID,
) (*api.NCCDReport, error) {
	if id.IsZero() {
		return nil, missingID("report")
	}
	res := &api.NCCDReport{}
	if err := c.getJSON(ctx, entityPath(PathNCCD, id), res); err != nil {
		return nil, err
	}
	return res, nil
}

// NCCDReportsForStudent returns the reports of one student
func (c *Client) NCCDReportsForStudent(
	ctx context.Context, studentID api.EntityID,
) ([]*api.NCCDReport, error) {
	if studentID.IsZero() {
		return nil, missingID("student")
	}
	var res []*api.NCCDReport
	path := entityPath(PathNCCD+"student/", studentID)
	if err := c.getJSON(ctx, path, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// EnsureClassReports asks the backend to create missing reports for the
// students of a class
func (c *Client) EnsureClassReports(
	ctx context.Context, classID api.EntityID,
) (*api.Response, error) {
	if classID.IsZero() {
		return nil, missingID("class")
	}
	return c.gw.Post(ctx,
		entityPath(PathNCCD+"class/", classID, "check-report"), nil,
	)
}

// CreateNCCDReport submits a new NCCD report
func (c *Client) CreateNCCDReport(
	ctx context.Context, s *NCCDSubmission,
) (*api.NormalizedResponse, error) {
	return c.create(ctx, EntityNCCDReport, PathNCCDCreate, s.form())
}

// UpdateNCCDReport replaces an existing NCCD report
func (c *Client) UpdateNCCDReport(
	ctx context.Context, id api.EntityID, s *NCCDSubmission,
) (*api.NormalizedResponse, error) {
	if id.IsZero() {
		return nil, missingID("report")
	}
	res, err := c.gw.Put(ctx, entityPath(PathNCCD, id), s.form())
	if err != nil {
		return nil, err
	}
	norm := gateway.Normalize(EntityNCCDReport, res)
	if norm.ID.IsZero() {
		norm.ID = id
	}
	return norm, nil
}

// DeleteNCCDReport removes an NCCD report
func (c *Client) DeleteNCCDReport(ctx context.Context, id api.EntityID) error {
	if id.IsZero() {
		return missingID("report")
	}
	return discard(c.gw.Delete(ctx, entityPath(PathNCCD, id), nil))
}

// CreateLessonEffectiveness records lesson effectiveness data against a
// report
func (c *Client) CreateLessonEffectiveness(
	ctx context.Context, reportID api.EntityID, data map[string]any,
) (*api.Response, error) {
	if reportID.IsZero() {
		return nil, missingID("report")
	}
	return c.gw.Post(ctx,
		entityPath(PathNCCD+"create-lesson-effectiveness/", reportID),
		gateway.JSON(data),
	)
}

func (s *NCCDSubmission) form() *gateway.Form {
	return gateway.NewForm().
		WithFile("evidence", s.Evidence).
		With("student", s.Student.String()).
		With("has_evidence", strconv.FormatBool(s.HasEvidence)).
		With("level_of_adjustment", s.LevelOfAdjustment).
		With("disability_category", s.DisabilityCategory).
		With("under_dda", strconv.FormatBool(s.UnderDDA)).
		With("additional_comments", s.AdditionalComments).
		With("status", s.Status)
}
