package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/learnable/internal/wizard"
	"github.com/kode4food/learnable/pkg/api"
)

var recordStatus = map[api.ErrorKind]int{
	api.ErrorValidation:  http.StatusUnprocessableEntity,
	api.ErrorAuth:        http.StatusUnauthorized,
	api.ErrorNetwork:     http.StatusBadGateway,
	api.ErrorServerError: http.StatusBadGateway,
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	res := api.ErrorResponse{
		Error:  err.Error(),
		Status: status,
	}
	var rec *api.ErrorRecord
	if errors.As(err, &rec) {
		res.Error = rec.Message
		res.Record = rec
	}
	c.JSON(status, res)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrFlowNotFound),
		errors.Is(err, wizard.ErrUnknownStep):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidJSON),
		errors.Is(err, ErrInvalidFile),
		errors.Is(err, wizard.ErrRequired),
		errors.Is(err, wizard.ErrAtFirstStep):
		return http.StatusBadRequest
	case errors.Is(err, wizard.ErrBusy), errors.Is(err, ErrFlowExists):
		return http.StatusConflict
	case errors.Is(err, wizard.ErrClosed):
		return http.StatusGone
	case errors.Is(err, wizard.ErrCloseCancelled):
		return http.StatusPreconditionRequired
	case errors.Is(err, ErrTooManyFlows):
		return http.StatusServiceUnavailable
	}

	var rec *api.ErrorRecord
	if errors.As(err, &rec) {
		if rec.HTTPStatus == http.StatusNotFound {
			return http.StatusNotFound
		}
		if status, ok := recordStatus[rec.Kind]; ok {
			return status
		}
	}
	return http.StatusInternalServerError
}
