package backend

import (
	"context"

	"github.com/kode4food/learnable/internal/gateway"
	"github.com/kode4food/learnable/pkg/api"
)

// ListStudents returns every student visible to the signed-in teacher
func (c *Client) ListStudents(ctx context.Context) ([]*api.Student, error) {
	var res []*api.Student
	if err := c.getJSON(ctx, PathStudents, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// GetStudent returns one student
func (c *Client) GetStudent(
	ctx context.Context, id api.EntityID,
) (*api.Student, error) {
	if id.IsZero() {
		return nil, missingID("student")
	}
	res := &api.Student{}
	if err := c.getJSON(ctx, entityPath(PathStudents, id), res); err != nil {
		return nil, err
	}
	return res, nil
}

// CreateStudent creates a student record
func (c *Client) CreateStudent(
	ctx context.Context, s *api.Student,
) (*api.NormalizedResponse, error) {
	return c.create(ctx, EntityStudent, PathStudentCreate, gateway.JSON(s))
}

// UpdateStudent patches the provided student fields
func (c *Client) UpdateStudent(
	ctx context.Context, id api.EntityID, fields map[string]any,
) error {
	if id.IsZero() {
		return missingID("student")
	}
	return discard(c.gw.Patch(ctx,
		entityPath(PathStudents, id, "patch"), gateway.JSON(fields),
	))
}

// DeleteStudent removes a student record
func (c *Client) DeleteStudent(ctx context.Context, id api.EntityID) error {
	if id.IsZero() {
		return missingID("student")
	}
	return discard(
		c.gw.Delete(ctx, entityPath(PathStudents, id, "delete"), nil),
	)
}

// FindStudentByEmail looks a student up by email address
func (c *Client) FindStudentByEmail(
	ctx context.Context, email string,
) (*api.Student, error) {
	res, err := c.gw.Post(ctx, PathStudentEmail,
		gateway.JSON(map[string]string{"email": email}),
	)
	if err != nil {
		return nil, err
	}
	s := &api.Student{}
	if err := res.Decode(s); err != nil {
		return nil, err
	}
	return s, nil
}
