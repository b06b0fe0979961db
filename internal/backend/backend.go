// Package backend is the typed client for the LearnABLE REST backend. Each
// operation maps to one backend route and returns decoded entities or an
// *api.ErrorRecord produced by the gateway
package backend

import (
	"context"
	"fmt"
	"net/url"

	"github.com/kode4food/learnable/internal/gateway"
	"github.com/kode4food/learnable/internal/session"
	"github.com/kode4food/learnable/pkg/api"
)

// Client calls the backend through a Gateway and records sign-ins in a
// session Store
type Client struct {
	gw      *gateway.Gateway
	session *session.Store
}

// Backend routes
const (
	PathClasses       = "/api/classes/"
	PathClassCreate   = "/api/classes/create/"
	PathClassCSV      = "/api/classes/upload-csv/"
	PathStudents      = "/api/students/"
	PathStudentCreate = "/api/students/create/"
	PathStudentEmail  = "/api/students/by-email/"
	PathUnitPlans     = "/api/unit-plans/unitplans/"
	PathMaterials     = "/api/learning-materials/"
	PathNCCD          = "/api/nccdreports/"
	PathNCCDCreate    = "/api/nccdreports/create/"
	PathLogin         = "/api/teachers/login/"
	PathRegister      = "/api/teachers/register/"
	PathProfile       = "/api/teachers/profile/"
	PathProfileUpdate = "/api/teachers/profile/update/"
	PathPassword      = "/api/teachers/profile/password/change/"
	PathSessions      = "/api/teachers/profile/sessions/"
	PathTerminate     = "/api/teachers/profile/sessions/terminate/"
	PathTerminateAll  = "/api/teachers/profile/sessions/terminate-all/"
)

// Entity names used to normalize creation responses
const (
	EntityClass      = "class"
	EntityStudent    = "student"
	EntityUnitPlan   = "unit_plan"
	EntityMaterial   = "material"
	EntityNCCDReport = "report"
)

// New creates a backend Client
func New(gw *gateway.Gateway, s *session.Store) *Client {
	return &Client{
		gw:      gw,
		session: s,
	}
}

// Gateway returns the underlying HTTP gateway
func (c *Client) Gateway() *gateway.Gateway {
	return c.gw
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	res, err := c.gw.Get(ctx, path)
	if err != nil {
		return err
	}
	return res.Decode(v)
}

func (c *Client) create(
	ctx context.Context, entity, path string, body gateway.Body,
) (*api.NormalizedResponse, error) {
	res, err := c.gw.Post(ctx, path, body)
	if err != nil {
		return nil, err
	}
	return gateway.Normalize(entity, res), nil
}

func discard(_ *api.Response, err error) error {
	return err
}

func entityPath(base string, id api.EntityID, suffix ...string) string {
	p := base + url.PathEscape(id.String()) + "/"
	for _, s := range suffix {
		p += s + "/"
	}
	return p
}

func missingID(what string) error {
	return api.Validation(fmt.Sprintf("%s id is required", what))
}
