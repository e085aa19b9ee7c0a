package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"residence-occupancy-backend/internal/occupancy"
	"residence-occupancy-backend/internal/store"
)

func actorFrom(c *gin.Context, body string) string {
	if a := strings.TrimSpace(body); a != "" {
		return a
	}
	return strings.TrimSpace(c.GetHeader(ActorHeader))
}

// CreateRecord handles POST /api/{family}.
func (h *Handler) CreateRecord(family occupancy.Family) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createRecordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		in, err := req.toIntake(family, actorFrom(c, req.Actor))
		if err != nil {
			h.writeError(c, err)
			return
		}
		rec, err := h.engine.Create(c.Request.Context(), in)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, newRecordResponse(rec))
	}
}

// GetRecord handles GET /api/{family}/{id}.
func (h *Handler) GetRecord(family occupancy.Family) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := h.engine.Get(c.Request.Context(), family, c.Param("id"))
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, newRecordResponse(rec))
	}
}

// TransitionRecord handles PATCH /api/{family}/{id}/status.
func (h *Handler) TransitionRecord(family occupancy.Family) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req transitionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request: status is required"})
			return
		}
		rec, err := h.engine.Transition(
			c.Request.Context(),
			family,
			c.Param("id"),
			occupancy.State(req.Status),
			actorFrom(c, req.Actor),
			occupancy.TransitionContext{RejectionReason: req.RejectionReason, Note: req.Note},
		)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, newRecordResponse(rec))
	}
}

// ListRecords handles GET /api/{family}.
func (h *Handler) ListRecords(family occupancy.Family) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := h.parseFilter(c, family)
		if err != nil {
			h.writeError(c, err)
			return
		}
		page, err := h.engine.List(c.Request.Context(), family, filter)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, newListResponse(page))
	}
}

// RecordHistory handles GET /api/{family}/{id}/history.
func (h *Handler) RecordHistory(family occupancy.Family) gin.HandlerFunc {
	return func(c *gin.Context) {
		trail, err := h.engine.History(c.Request.Context(), family, c.Param("id"))
		if err != nil {
			h.writeError(c, err)
			return
		}
		out := make([]transitionResponse, len(trail))
		for i, t := range trail {
			out[i] = transitionResponse{From: t.FromState, To: t.ToState, Actor: t.Actor, At: t.At}
		}
		c.JSON(http.StatusOK, out)
	}
}

func (h *Handler) parseFilter(c *gin.Context, family occupancy.Family) (store.Filter, error) {
	f := store.Filter{
		Search:    c.Query("search"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}

	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			s := occupancy.State(strings.TrimSpace(part))
			if !family.HasState(s) {
				return f, fmt.Errorf("%w: unknown %s status %q", occupancy.ErrValidation, family, s)
			}
			f.Statuses = append(f.Statuses, s)
		}
	}

	var err error
	if f.DateFrom, err = h.parseDate(c.Query("dateFrom")); err != nil {
		return f, err
	}
	if f.DateTo, err = h.parseDate(c.Query("dateTo")); err != nil {
		return f, err
	}
	if f.DateFrom != nil && f.DateTo != nil && f.DateTo.Before(*f.DateFrom) {
		return f, fmt.Errorf("%w: dateTo is before dateFrom", occupancy.ErrValidation)
	}

	if f.Page, err = queryInt(c, "page"); err != nil {
		return f, err
	}
	if f.PageSize, err = queryInt(c, "pageSize"); err != nil {
		return f, err
	}
	return f, nil
}

func (h *Handler) parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, h.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q, use YYYY-MM-DD", occupancy.ErrValidation, raw)
	}
	return &t, nil
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", occupancy.ErrValidation, key)
	}
	return n, nil
}
