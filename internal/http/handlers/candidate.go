package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cbpricey/Motion-Industries/internal/http/response"
	"github.com/cbpricey/Motion-Industries/internal/pkg/ctxutil"
	apperrors "github.com/cbpricey/Motion-Industries/internal/pkg/errors"
	"github.com/cbpricey/Motion-Industries/internal/repos"
	"github.com/cbpricey/Motion-Industries/internal/services"
)

type CandidateHandler struct {
	candidateService services.CandidateService
	reviewService    services.ReviewService
}

func NewCandidateHandler(candidateService services.CandidateService, reviewService services.ReviewService) *CandidateHandler {
	return &CandidateHandler{candidateService: candidateService, reviewService: reviewService}
}

func (ch *CandidateHandler) List(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}

	actor := ctxutil.GetRequestData(c.Request.Context()).Actor()
	page, err := ch.candidateService.ListCandidates(c.Request.Context(), actor, services.CandidateQuery{
		Filter: filter,
		Sort:   c.Query("sort"),
		Cursor: c.Query("cursor"),
	})
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"results":     page.Results,
		"total":       page.Total,
		"next_cursor": page.NextCursor,
	})
}

func (ch *CandidateHandler) Get(c *gin.Context) {
	actor := ctxutil.GetRequestData(c.Request.Context()).Actor()
	record, err := ch.candidateService.GetCandidate(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, record)
}

func (ch *CandidateHandler) Facets(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	field := c.DefaultQuery("field", "manufacturer")

	actor := ctxutil.GetRequestData(c.Request.Context()).Actor()
	buckets, err := ch.candidateService.FacetCandidates(c.Request.Context(), actor, field, filter)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"field": field, "buckets": buckets})
}

func (ch *CandidateHandler) Review(c *gin.Context) {
	var req struct {
		Action  string  `json:"action"`
		Comment *string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	actor := ctxutil.GetRequestData(c.Request.Context()).Actor()
	record, err := ch.reviewService.Transition(c.Request.Context(), actor, c.Param("id"), req.Action, req.Comment)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"success": true,
		"status":  record.Status,
		"record":  record,
	})
}

func parseFilter(c *gin.Context) (repos.CandidateFilter, error) {
	filter := repos.CandidateFilter{
		Manufacturer: c.Query("manufacturer"),
		SKUNumber:    c.Query("sku_number"),
		SKUPrefix:    c.Query("sku_prefix"),
		Status:       c.Query("status"),
	}
	if filter.SKUNumber == "" {
		filter.SKUNumber = c.Query("sku")
	}
	if v := c.Query("min_confidence"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, apperrors.ErrInvalidArgument
		}
		filter.MinConfidence = &f
	}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, apperrors.ErrInvalidArgument
		}
		filter.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, apperrors.ErrInvalidArgument
		}
		filter.To = &t
	}
	return filter, nil
}
