package api

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var metricsHandler = fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())

type healthResponse struct {
	Status  string `json:"status" example:"ok"`
	Records int    `json:"records" example:"3"`
	Error   string `json:"error,omitempty"`
}

// @Summary Service health
// @Description Reports "degraded" while the latest snapshot write has failed. Reads and writes keep working in memory.
// @Tags    Admin
// @Success 200 {object} healthResponse
// @Router  /health [get]
func (s *Service) healthHandler(ctx *fasthttp.RequestCtx) {
	resp := healthResponse{Status: "ok", Records: s.store.Count()}
	if err := s.store.Health(); err != nil {
		resp.Status = "degraded"
		resp.Error = err.Error()
	}

	writeJSON(ctx, fasthttp.StatusOK, resp)
}

// @Summary Consumed Kafka messages
// @Tags    Events
// @Produce json
// @Param   limit  query int false "Limit"  default(50)
// @Param   offset query int false "Offset" default(0)
// @Success 200 {object} listResponse
// @Failure 501 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router  /events [get]
func (s *Service) listEvents(ctx *fasthttp.RequestCtx) {
	if s.events == nil {
		writeError(ctx, fasthttp.StatusNotImplemented, ErrEventsDisabled)
		return
	}

	limit, offset := parseLO(ctx)
	rows, err := s.events.ListEvents(ctx, limit, offset)
	if err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, fmt.Errorf("events.ListEvents: %w", err))
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, listResponse{Items: rows, Limit: limit, Offset: offset})
}

// @Summary DLQ messages
// @Tags    Events
// @Produce json
// @Param   limit  query int false "Limit"  default(50)
// @Param   offset query int false "Offset" default(0)
// @Success 200 {object} listResponse
// @Failure 501 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router  /dlq [get]
func (s *Service) listDLQ(ctx *fasthttp.RequestCtx) {
	if s.events == nil {
		writeError(ctx, fasthttp.StatusNotImplemented, ErrEventsDisabled)
		return
	}

	limit, offset := parseLO(ctx)
	rows, err := s.events.ListDLQ(ctx, limit, offset)
	if err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, fmt.Errorf("events.ListDLQ: %w", err))
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, listResponse{Items: rows, Limit: limit, Offset: offset})
}

// @Summary Clear the events ledger and DLQ
// @Tags    Admin
// @Success 200 {object} okResponse
// @Failure 501 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router  /admin/reset [post]
func (s *Service) resetHandler(ctx *fasthttp.RequestCtx) {
	if s.events == nil {
		writeError(ctx, fasthttp.StatusNotImplemented, ErrEventsDisabled)
		return
	}

	if err := s.events.ResetAll(ctx); err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, fmt.Errorf("events.ResetAll: %w", err))
		return
	}

	ok(ctx, "Events ledger cleared")
}

func parseLO(ctx *fasthttp.RequestCtx) (int, int) {
	q := ctx.URI().QueryArgs()
	limit := 50
	offset := 0

	if v := q.GetUfloatOrZero("limit"); v > 0 && v <= 500 {
		limit = int(v)
	}
	if s := string(q.Peek("offset")); s != "" {
		if x, err := strconv.Atoi(s); err == nil && x >= 0 {
			offset = x
		}
	}

	return limit, offset
}
