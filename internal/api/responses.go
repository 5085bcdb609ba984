package api

import (
	"encoding/json"
	"errors"

	"github.com/valyala/fasthttp"

	"github.com/apper-canvas/employee-registry-backend/internal/dto"
	"github.com/apper-canvas/employee-registry-backend/internal/form"
	"github.com/apper-canvas/employee-registry-backend/internal/validation"
)

var (
	ErrIDRequired       = errors.New("id path parameter is required")
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrFormNotFound     = errors.New("form session not found")
	ErrInvalidKey       = errors.New("key must be one of: employeeId, email")
	ErrEventsDisabled   = errors.New("events ledger is not configured")
)

type okResponse struct {
	Status string `json:"status" example:"ok"`
	Msg    string `json:"msg" example:"Done"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`

	// Errors holds per-field messages keyed by dotted field path.
	Errors     map[validation.Field]string `json:"errors,omitempty"`
	Completion *int                        `json:"completion,omitempty"`
}

type listResponse struct {
	Items  any `json:"items"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func writeJSON(ctx *fasthttp.RequestCtx, statusCode int, body any) {
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.SetStatusCode(statusCode)

	_ = json.NewEncoder(ctx).Encode(body)
}

func ok(ctx *fasthttp.RequestCtx, msg string) {
	writeJSON(ctx, fasthttp.StatusOK, okResponse{Status: "ok", Msg: msg})
}

func writeError(ctx *fasthttp.RequestCtx, httpStatus int, err error) {
	writeJSON(ctx, httpStatus, errorResponse{Code: fasthttp.StatusMessage(httpStatus), Message: err.Error()})
}

func writeFieldErrors(ctx *fasthttp.RequestCtx, httpStatus int, err error, fields map[validation.Field]string) {
	writeJSON(ctx, httpStatus, errorResponse{
		Code:    fasthttp.StatusMessage(httpStatus),
		Message: err.Error(),
		Errors:  fields,
	})
}

// writeSubmitError maps a coordinator error to a response. f supplies the
// field messages the coordinator left on the form.
func writeSubmitError(ctx *fasthttp.RequestCtx, f *form.Form, err error) {
	var (
		vf  *form.ValidationFailedError
		dup *dto.DuplicateKeyError
	)

	switch {
	case errors.Is(err, form.ErrIncomplete):
		completion := f.Completion()
		resp := errorResponse{
			Code:       fasthttp.StatusMessage(fasthttp.StatusBadRequest),
			Message:    err.Error(),
			Completion: &completion,
		}
		if errors.As(err, &vf) {
			resp.Errors = vf.Errors
		}
		writeJSON(ctx, fasthttp.StatusBadRequest, resp)
	case errors.As(err, &vf):
		writeFieldErrors(ctx, fasthttp.StatusBadRequest, err, vf.Errors)
	case errors.As(err, &dup):
		writeFieldErrors(ctx, fasthttp.StatusConflict, err, f.Errors())
	case errors.Is(err, form.ErrSubmitInFlight):
		writeError(ctx, fasthttp.StatusConflict, err)
	default:
		writeError(ctx, fasthttp.StatusInternalServerError, err)
	}
}
