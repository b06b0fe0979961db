package backend_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/learnable/internal/assert/helpers"
	"github.com/kode4food/learnable/internal/backend"
	"github.com/kode4food/learnable/pkg/api"
)

const reportJSON = `{
	"id": 4,
	"student": 5,
	"has_evidence": true,
	"level_of_adjustment": "Substantial",
	"disability_category": "Cognitive",
	"under_dda": false,
	"status": "Approved"
}`

func TestNCCDQueries(t *testing.T) {
	b := helpers.NewFakeBackend(t)
	b.On(http.MethodGet, "/api/nccdreports/", http.StatusOK,
		"["+reportJSON+"]")
	b.On(http.MethodGet, "/api/nccdreports/4/", http.StatusOK, reportJSON)
	b.On(http.MethodGet, "/api/nccdreports/student/5/", http.StatusOK,
		"["+reportJSON+"]")
	b.On(http.MethodPost, "/api/nccdreports/class/3/check-report/",
		http.StatusOK, `{"created":2}`)
	b.On(http.MethodPost,
		"/api/nccdreports/create-lesson-effectiveness/4/",
		http.StatusCreated, `{"id":77}`)
	b.On(http.MethodDelete, "/api/nccdreports/4/", http.StatusNoContent, "")

	cl := helpers.NewTestClient(t, b)
	ctx := context.Background()

	all, err := cl.ListNCCDReports(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, api.EntityID("5"), all[0].Student)

	rep, err := cl.GetNCCDReport(ctx, "4")
	require.NoError(t, err)
	assert.True(t, rep.HasEvidence)
	assert.Equal(t, api.AdjustmentSubstantial, rep.LevelOfAdjustment)
	assert.Equal(t, api.ReportApproved, rep.Status)

	byStudent, err := cl.NCCDReportsForStudent(ctx, "5")
	require.NoError(t, err)
	assert.Len(t, byStudent, 1)

	check, err := cl.EnsureClassReports(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, int64(2), check.Get("created").Int())

	le, err := cl.CreateLessonEffectiveness(ctx, "4", map[string]any{
		"lesson_date": "2025-03-01",
		"rating":      4,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(77), le.Get("id").Int())
	req := b.Requests(http.MethodPost,
		"/api/nccdreports/create-lesson-effectiveness/4/")[0]
	assert.Equal(t, int64(4), req.JSON("rating").Int())

	assert.NoError(t, cl.DeleteNCCDReport(ctx, "4"))
}

func TestNCCDSubmit(t *testing.T) {
	b := helpers.NewFakeBackend(t)
	b.On(http.MethodPost, "/api/nccdreports/create/", http.StatusCreated,
		`{"report_id":4}`)
	b.On(http.MethodPut, "/api/nccdreports/4/", http.StatusOK,
		`{"message":"updated"}`)

	cl := helpers.NewTestClient(t, b)
	ctx := context.Background()

	sub := &backend.NCCDSubmission{
		Student:            "5",
		HasEvidence:        true,
		LevelOfAdjustment:  api.AdjustmentQDTP,
		DisabilityCategory: api.CategorySocial,
		UnderDDA:           true,
		Status:             api.ReportApproved,
		Evidence:           &api.File{Name: "evidence.pdf", Data: []byte("x")},
	}
	res, err := cl.CreateNCCDReport(ctx, sub)
	require.NoError(t, err)
	assert.Equal(t, api.EntityID("4"), res.ID)

	req := b.Requests(http.MethodPost, "/api/nccdreports/create/")[0]
	assert.Equal(t, map[string]string{
		"student":             "5",
		"has_evidence":        "true",
		"level_of_adjustment": "QDTP",
		"disability_category": "Social/Emotional",
		"under_dda":           "true",
		"additional_comments": "",
		"status":              "Approved",
	}, req.Form)
	assert.Equal(t, "evidence.pdf", req.Files["evidence"].Name)

	sub.Evidence = nil
	res, err = cl.UpdateNCCDReport(ctx, "4", sub)
	require.NoError(t, err)
	assert.Equal(t, api.EntityID("4"), res.ID)
	assert.Equal(t, "updated", res.Get("message").String())
	req = b.Requests(http.MethodPut, "/api/nccdreports/4/")[0]
	assert.Empty(t, req.Files)

	_, err = cl.UpdateNCCDReport(ctx, "", sub)
	assert.Equal(t, api.ErrorValidation, api.KindOf(err))
}

func TestNCCDFormServerError(t *testing.T) {
	b := helpers.NewFakeBackend(t)
	b.On(http.MethodPost, "/api/nccdreports/create/",
		http.StatusInternalServerError, `{"detail":"boom"}`)

	cl := helpers.NewTestClient(t, b)
	_, err := cl.CreateNCCDReport(context.Background(),
		&backend.NCCDSubmission{Student: "5"},
	)
	rec := api.AsErrorRecord(err)
	require.NotNil(t, rec)
	assert.Equal(t, api.ErrorServerError, rec.Kind)
	assert.Contains(t, rec.Message, "student, has_evidence")
}
