package backend

import (
	"context"

	"github.com/kode4food/learnable/internal/gateway"
	"github.com/kode4food/learnable/pkg/api"
)

type (
	// ClassRequest creates or updates a class
	ClassRequest struct {
		ClassName string `json:"class_name"`
		YearLevel string `json:"year_level,omitempty"`
		Subject   string `json:"subject,omitempty"`
	}

	studentRef struct {
		StudentID api.EntityID `json:"student_id"`
	}
)

// ListClasses returns the signed-in teacher's classes
func (c *Client) ListClasses(ctx context.Context) ([]*api.Class, error) {
	var res []*api.Class
	if err := c.getJSON(ctx, PathClasses, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// GetClass returns one class with its students
func (c *Client) GetClass(
	ctx context.Context, id api.EntityID,
) (*api.Class, error) {
	if id.IsZero() {
		return nil, missingID("class")
	}
	res := &api.Class{}
	if err := c.getJSON(ctx, entityPath(PathClasses, id), res); err != nil {
		return nil, err
	}
	return res, nil
}

// CreateClass creates a class. The backend answers with one of several
// identifier shapes, so the result is normalized
func (c *Client) CreateClass(
	ctx context.Context, req *ClassRequest,
) (*api.NormalizedResponse, error) {
	return c.create(ctx, EntityClass, PathClassCreate, gateway.JSON(req))
}

// UpdateClass replaces a class's details
func (c *Client) UpdateClass(
	ctx context.Context, id api.EntityID, req *ClassRequest,
) error {
	if id.IsZero() {
		return missingID("class")
	}
	return discard(
		c.gw.Put(ctx, entityPath(PathClasses, id), gateway.JSON(req)),
	)
}

// DeleteClass removes a class
func (c *Client) DeleteClass(ctx context.Context, id api.EntityID) error {
	if id.IsZero() {
		return missingID("class")
	}
	return discard(c.gw.Delete(ctx, entityPath(PathClasses, id), nil))
}

// AddStudent enrolls an existing student in a class
func (c *Client) AddStudent(
	ctx context.Context, classID, studentID api.EntityID,
) error {
	return c.studentMembership(ctx, classID, studentID, "add-student")
}

// RemoveStudent withdraws a student from a class
func (c *Client) RemoveStudent(
	ctx context.Context, classID, studentID api.EntityID,
) error {
	return c.studentMembership(ctx, classID, studentID, "remove-student")
}

// UploadStudentCSV enrolls the students listed in a CSV file
func (c *Client) UploadStudentCSV(
	ctx context.Context, classID api.EntityID, file *api.File,
) (*api.Response, error) {
	if classID.IsZero() {
		return nil, missingID("class")
	}
	form := gateway.NewForm().
		WithFile("file", file).
		With("class_id", classID.String())
	return c.gw.Post(ctx, PathClassCSV, form)
}

func (c *Client) studentMembership(
	ctx context.Context, classID, studentID api.EntityID, action string,
) error {
	if classID.IsZero() {
		return missingID("class")
	}
	if studentID.IsZero() {
		return missingID("student")
	}
	return discard(c.gw.Post(ctx,
		entityPath(PathClasses, classID, action),
		gateway.JSON(studentRef{StudentID: studentID}),
	))
}
