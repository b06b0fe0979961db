package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/learnable/internal/store"
	"github.com/kode4food/learnable/internal/wizard"
	"github.com/kode4food/learnable/internal/wizard/classes"
	"github.com/kode4food/learnable/internal/wizard/nccd"
	"github.com/kode4food/learnable/pkg/api"
	"github.com/kode4food/learnable/pkg/log"
)

var (
	ErrInvalidJSON = errors.New("invalid JSON")
	ErrInvalidFile = errors.New("invalid file upload")
	ErrStartFlow   = errors.New("failed to start wizard")
)

// MaxUploadSize bounds the files accepted as wizard attachments
const MaxUploadSize = 32 << 20

func (s *Server) startClassSetup(c *gin.Context) {
	var req api.StartClassRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, fmt.Errorf("%w: %w", ErrInvalidJSON, err))
			return
		}
	}
	id := req.FlowID
	if id == "" {
		id = api.NewFlowID()
	}

	fb := store.NewKey(s.store, classes.FlowFallbackKey(id))
	opts := append(s.flowOptions(
		func(_ context.Context, classID api.EntityID) error {
			slog.Info(classes.MsgCompleted,
				log.FlowID(id),
				log.EntityID(classID))
			return nil
		},
	), wizard.WithID(id))
	f, err := s.classes.WithFallback(fb).NewFlow(opts...)
	if err != nil {
		writeError(c, fmt.Errorf("%w: %w", ErrStartFlow, err))
		return
	}
	s.register(c, f)
}

func (s *Server) startNCCDReport(c *gin.Context) {
	var req api.StartNCCDRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, fmt.Errorf("%w: %w", ErrInvalidJSON, err))
			return
		}
	}

	f, err := s.reports.NewFlow(c.Request.Context(), nccdTarget(&req),
		s.flowOptions(func(_ context.Context, id api.EntityID) error {
			slog.Info("NCCD report saved",
				log.EntityID(id))
			return nil
		})...,
	)
	if err != nil {
		writeError(c, err)
		return
	}
	s.register(c, f)
}

func (s *Server) getFlow(c *gin.Context) {
	f, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, f.State())
}

func (s *Server) closeFlow(c *gin.Context) {
	f, ok := s.lookup(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if c.Query("confirm") == "true" {
		ctx = wizard.Confirmed(ctx)
	}
	if err := f.Close(ctx); err != nil {
		writeError(c, err)
		return
	}
	s.flows.Remove(f.ID())
	c.JSON(http.StatusOK, f.State())
}

func (s *Server) setValues(c *gin.Context) {
	f, ok := s.lookup(c)
	if !ok {
		return
	}
	var req api.SetValuesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %w", ErrInvalidJSON, err))
		return
	}

	key := wizard.StepKey(c.Param("stepKey"))
	for field, value := range req.Values {
		if err := f.SetValue(key, field, value); err != nil {
			writeError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, f.State())
}

func (s *Server) uploadFile(c *gin.Context) {
	f, ok := s.lookup(c)
	if !ok {
		return
	}
	file, err := readUpload(c)
	if err != nil {
		writeError(c, fmt.Errorf("%w: %w", ErrInvalidFile, err))
		return
	}

	key := wizard.StepKey(c.Param("stepKey"))
	if err := f.SetValue(key, c.Param("field"), file); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, f.State())
}

func (s *Server) advance(c *gin.Context) {
	s.transition(c, func(ctx context.Context, f *wizard.Flow) error {
		return f.Advance(ctx)
	})
}

func (s *Server) skip(c *gin.Context) {
	s.transition(c, func(ctx context.Context, f *wizard.Flow) error {
		return f.Skip(ctx)
	})
}

func (s *Server) back(c *gin.Context) {
	s.transition(c, func(_ context.Context, f *wizard.Flow) error {
		return f.Back()
	})
}

// transition runs fn detached from the request's cancellation: a client
// that goes away does not abort a backend call already under way
func (s *Server) transition(
	c *gin.Context, fn func(context.Context, *wizard.Flow) error,
) {
	f, ok := s.lookup(c)
	if !ok {
		return
	}
	ctx := context.WithoutCancel(c.Request.Context())
	if err := fn(ctx, f); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, f.State())
}

func (s *Server) flowOptions(done wizard.CompleteFunc) []wizard.Option {
	return []wizard.Option{
		wizard.WithEvents(s.hub),
		wizard.WithCompletion(done),
	}
}

func (s *Server) register(c *gin.Context, f *wizard.Flow) {
	if err := s.flows.Add(f); err != nil {
		writeError(c, err)
		return
	}
	slog.Info("Wizard started",
		log.FlowID(f.ID()),
		slog.String("kind", f.Kind()))
	c.JSON(http.StatusCreated, f.State())
}

func (s *Server) lookup(c *gin.Context) (*wizard.Flow, bool) {
	f, err := s.flows.Get(api.FlowID(c.Param("flowID")))
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return f, true
}

func nccdTarget(req *api.StartNCCDRequest) nccd.Target {
	return nccd.Target{
		Student: req.StudentID,
		Report:  req.ReportID,
	}
}

func readUpload(c *gin.Context) (*api.File, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, err
	}
	if fh.Size > MaxUploadSize {
		return nil, fmt.Errorf("file exceeds %d bytes", MaxUploadSize)
	}
	r, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return &api.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
