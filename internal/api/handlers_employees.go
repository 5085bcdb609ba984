package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/apper-canvas/employee-registry-backend/internal/dto"
	"github.com/apper-canvas/employee-registry-backend/internal/form"
)

type optionsResponse struct {
	Departments      []string `json:"departments"`
	Designations     []string `json:"designations"`
	Relationships    []string `json:"relationships"`
	ResumeExtensions []string `json:"resumeExtensions"`
	MaxResumeSize    int64    `json:"maxResumeSize"`
}

// @Summary List employees
// @Tags    Employees
// @Produce json
// @Param   q query string false "Case-insensitive search over name, employee ID, email, department and designation"
// @Success 200 {array} dto.EmployeeRecord
// @Router  /employees [get]
func (s *Service) listEmployees(ctx *fasthttp.RequestCtx) {
	if q := strings.TrimSpace(string(ctx.QueryArgs().Peek("q"))); q != "" {
		writeJSON(ctx, fasthttp.StatusOK, s.store.Search(ctx, q))
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, s.store.GetAll(ctx))
}

// @Summary Get employee by record id
// @Tags    Employees
// @Produce json
// @Param   id path string true "Record id"
// @Success 200 {object} dto.EmployeeRecord
// @Failure 404 {object} errorResponse "employee not found"
// @Router  /employees/{id} [get]
func (s *Service) getEmployee(ctx *fasthttp.RequestCtx) {
	id, okID := pathParam(ctx, "id")
	if !okID {
		writeError(ctx, fasthttp.StatusBadRequest, ErrIDRequired)
		return
	}

	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		s.writeStoreError(ctx, "store.GetByID", err)
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, rec)
}

// @Summary Find employee by a unique key
// @Tags    Employees
// @Produce json
// @Param   key   query string true "employeeId or email"
// @Param   value query string true "Key value"
// @Success 200 {object} dto.EmployeeRecord
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse "employee not found"
// @Router  /lookup [get]
func (s *Service) lookupEmployee(ctx *fasthttp.RequestCtx) {
	args := ctx.QueryArgs()

	key, valid := dto.ParseUniqueKey(string(args.Peek("key")))
	if !valid {
		writeError(ctx, fasthttp.StatusBadRequest, ErrInvalidKey)
		return
	}

	rec, err := s.store.FindByUniqueKey(ctx, key, strings.TrimSpace(string(args.Peek("value"))))
	if err != nil {
		s.writeStoreError(ctx, "store.FindByUniqueKey", err)
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, rec)
}

// @Summary List employees of a department
// @Tags    Employees
// @Produce json
// @Param   department path string true "Department name"
// @Success 200 {array} dto.EmployeeRecord
// @Router  /departments/{department}/employees [get]
func (s *Service) listDepartment(ctx *fasthttp.RequestCtx) {
	department, _ := pathParam(ctx, "department")
	writeJSON(ctx, fasthttp.StatusOK, s.store.ByDepartment(ctx, department))
}

// @Summary Create employee from a complete draft
// @Description The draft goes through the same form and submission path as a form session.
// @Tags    Employees
// @Accept  json
// @Produce json
// @Param   request body dto.EmployeeRecord true "Draft; id and timestamps are ignored"
// @Success 201 {object} dto.EmployeeRecord
// @Failure 400 {object} errorResponse "incomplete or invalid"
// @Failure 409 {object} errorResponse "employee ID or email already registered"
// @Failure 500 {object} errorResponse
// @Router  /employees [post]
func (s *Service) createEmployee(ctx *fasthttp.RequestCtx) {
	var draft dto.EmployeeRecord
	if err := json.Unmarshal(ctx.PostBody(), &draft); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, fmt.Errorf("json.Unmarshal: %w", err))
		return
	}

	f := s.forms.newForm()
	f.Load(draft)

	s.submit(ctx, f)
}

// @Summary Update employee
// @Description Only the fields present in the body are changed and validated.
// @Tags    Employees
// @Accept  json
// @Produce json
// @Param   id      path string            true "Record id"
// @Param   request body dto.EmployeePatch true "Patch"
// @Success 200 {object} dto.EmployeeRecord
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse "employee not found"
// @Failure 409 {object} errorResponse "employee ID or email already registered"
// @Router  /employees/{id} [put]
func (s *Service) updateEmployee(ctx *fasthttp.RequestCtx) {
	id, okID := pathParam(ctx, "id")
	if !okID {
		writeError(ctx, fasthttp.StatusBadRequest, ErrIDRequired)
		return
	}

	var patch dto.EmployeePatch
	if err := json.Unmarshal(ctx.PostBody(), &patch); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, fmt.Errorf("json.Unmarshal: %w", err))
		return
	}
	trimPatch(&patch)

	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		s.writeStoreError(ctx, "store.GetByID", err)
		return
	}

	if fieldErrs := validatePatch(s.validator, current, patch); len(fieldErrs) > 0 {
		writeFieldErrors(ctx, fasthttp.StatusBadRequest, &form.ValidationFailedError{Errors: fieldErrs}, fieldErrs)
		return
	}

	rec, err := s.store.Update(ctx, id, patch)
	if err != nil {
		s.writeStoreError(ctx, "store.Update", err)
		return
	}

	s.publish(ctx, eventUpdated, rec)
	writeJSON(ctx, fasthttp.StatusOK, rec)
}

// @Summary Delete employee
// @Tags    Employees
// @Produce json
// @Param   id path string true "Record id"
// @Success 200 {object} okResponse
// @Failure 404 {object} errorResponse "employee not found"
// @Router  /employees/{id} [delete]
func (s *Service) deleteEmployee(ctx *fasthttp.RequestCtx) {
	id, okID := pathParam(ctx, "id")
	if !okID {
		writeError(ctx, fasthttp.StatusBadRequest, ErrIDRequired)
		return
	}

	rec, err := s.store.Delete(ctx, id)
	if err != nil {
		s.writeStoreError(ctx, "store.Delete", err)
		return
	}

	s.publish(ctx, eventDeleted, rec)
	ok(ctx, "Employee deleted")
}

// @Summary Dropdown options
// @Tags    Employees
// @Produce json
// @Success 200 {object} optionsResponse
// @Router  /options [get]
func (s *Service) options(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusOK, optionsResponse{
		Departments:      dto.Departments,
		Designations:     dto.Designations,
		Relationships:    dto.Relationships,
		ResumeExtensions: dto.ResumeExtensions,
		MaxResumeSize:    dto.MaxResumeSize,
	})
}

// submit runs the coordinator for f and writes the outcome.
func (s *Service) submit(ctx *fasthttp.RequestCtx, f *form.Form) {
	rec, err := s.submitter.Submit(ctx, f)
	if err != nil {
		writeSubmitError(ctx, f, err)
		return
	}

	s.publish(ctx, eventCreated, rec)
	writeJSON(ctx, fasthttp.StatusCreated, rec)
}

func (s *Service) writeStoreError(ctx *fasthttp.RequestCtx, op string, err error) {
	var dup *dto.DuplicateKeyError

	switch {
	case errors.Is(err, dto.ErrNotFound):
		writeError(ctx, fasthttp.StatusNotFound, ErrEmployeeNotFound)
	case errors.As(err, &dup):
		writeError(ctx, fasthttp.StatusConflict, err)
	default:
		writeError(ctx, fasthttp.StatusInternalServerError, fmt.Errorf("%s: %w", op, err))
	}
}

func pathParam(ctx *fasthttp.RequestCtx, name string) (string, bool) {
	v, _ := ctx.UserValue(name).(string)
	v = strings.TrimSpace(v)
	return v, v != ""
}
