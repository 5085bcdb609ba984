package api

import (
	"encoding/json"
	"fmt"

	"github.com/valyala/fasthttp"

	"github.com/apper-canvas/employee-registry-backend/internal/dto"
	"github.com/apper-canvas/employee-registry-backend/internal/form"
	"github.com/apper-canvas/employee-registry-backend/internal/validation"
)

type formResponse struct {
	ID string `json:"id" example:"1f0c5a8e-8d7b-4b8f-8a55-2b1c8a0e4d11"`
	form.State
}

// @Summary Open a form session
// @Tags    Forms
// @Produce json
// @Success 201 {object} formResponse
// @Router  /forms [post]
func (s *Service) createForm(ctx *fasthttp.RequestCtx) {
	id, f := s.forms.create()
	writeJSON(ctx, fasthttp.StatusCreated, formResponse{ID: id, State: f.State()})
}

// @Summary Form session state
// @Tags    Forms
// @Produce json
// @Param   id path string true "Form id"
// @Success 200 {object} formResponse
// @Failure 404 {object} errorResponse "form session not found"
// @Router  /forms/{id} [get]
func (s *Service) getForm(ctx *fasthttp.RequestCtx) {
	id, f, found := s.lookupForm(ctx)
	if !found {
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, formResponse{ID: id, State: f.State()})
}

// @Summary Edit form fields
// @Description Body maps dotted field paths (e.g. "emergencyContact.phone") to values. Each edited field is re-validated.
// @Tags    Forms
// @Accept  json
// @Produce json
// @Param   id      path string            true "Form id"
// @Param   request body map[string]string true "Field values"
// @Success 200 {object} formResponse
// @Failure 400 {object} errorResponse "unknown or non-text field"
// @Failure 404 {object} errorResponse "form session not found"
// @Router  /forms/{id}/fields [put]
func (s *Service) setFormFields(ctx *fasthttp.RequestCtx) {
	id, f, found := s.lookupForm(ctx)
	if !found {
		return
	}

	var values map[string]string
	if err := json.Unmarshal(ctx.PostBody(), &values); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, fmt.Errorf("json.Unmarshal: %w", err))
		return
	}

	fields := make(map[validation.Field]string, len(values))
	for path, v := range values {
		field, known := validation.ParseField(path)
		if !known {
			writeError(ctx, fasthttp.StatusBadRequest, fmt.Errorf("unknown field %q", path))
			return
		}
		fields[field] = v
	}

	for field, v := range fields {
		if err := f.SetField(field, v); err != nil {
			writeError(ctx, fasthttp.StatusBadRequest, fmt.Errorf("form.SetField: %w", err))
			return
		}
	}

	writeJSON(ctx, fasthttp.StatusOK, formResponse{ID: id, State: f.State()})
}

// @Summary Attach resume metadata
// @Tags    Forms
// @Accept  json
// @Produce json
// @Param   id      path string             true "Form id"
// @Param   request body dto.ResumeMetadata true "Resume metadata"
// @Success 200 {object} formResponse
// @Failure 404 {object} errorResponse "form session not found"
// @Router  /forms/{id}/resume [put]
func (s *Service) setFormResume(ctx *fasthttp.RequestCtx) {
	id, f, found := s.lookupForm(ctx)
	if !found {
		return
	}

	var meta dto.ResumeMetadata
	if err := json.Unmarshal(ctx.PostBody(), &meta); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, fmt.Errorf("json.Unmarshal: %w", err))
		return
	}

	f.SetResume(meta)
	writeJSON(ctx, fasthttp.StatusOK, formResponse{ID: id, State: f.State()})
}

// @Summary Remove resume
// @Tags    Forms
// @Produce json
// @Param   id path string true "Form id"
// @Success 200 {object} formResponse
// @Failure 404 {object} errorResponse "form session not found"
// @Router  /forms/{id}/resume [delete]
func (s *Service) clearFormResume(ctx *fasthttp.RequestCtx) {
	id, f, found := s.lookupForm(ctx)
	if !found {
		return
	}

	f.ClearResume()
	writeJSON(ctx, fasthttp.StatusOK, formResponse{ID: id, State: f.State()})
}

// @Summary Submit form
// @Description On success the record is created and the form is reset for the next employee.
// @Tags    Forms
// @Produce json
// @Param   id path string true "Form id"
// @Success 201 {object} dto.EmployeeRecord
// @Failure 400 {object} errorResponse "incomplete or invalid"
// @Failure 404 {object} errorResponse "form session not found"
// @Failure 409 {object} errorResponse "duplicate key or submission in flight"
// @Failure 500 {object} errorResponse
// @Router  /forms/{id}/submit [post]
func (s *Service) submitForm(ctx *fasthttp.RequestCtx) {
	_, f, found := s.lookupForm(ctx)
	if !found {
		return
	}

	s.submit(ctx, f)
}

// @Summary Discard form session
// @Tags    Forms
// @Produce json
// @Param   id path string true "Form id"
// @Success 200 {object} okResponse
// @Failure 404 {object} errorResponse "form session not found"
// @Router  /forms/{id} [delete]
func (s *Service) deleteForm(ctx *fasthttp.RequestCtx) {
	id, _ := pathParam(ctx, "id")
	if !s.forms.remove(id) {
		writeError(ctx, fasthttp.StatusNotFound, ErrFormNotFound)
		return
	}

	ok(ctx, "Form discarded")
}

func (s *Service) lookupForm(ctx *fasthttp.RequestCtx) (string, *form.Form, bool) {
	id, _ := pathParam(ctx, "id")

	f, found := s.forms.get(id)
	if !found {
		writeError(ctx, fasthttp.StatusNotFound, ErrFormNotFound)
		return "", nil, false
	}

	return id, f, true
}
