package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"txn-classifier/internal/domain"
	"txn-classifier/internal/logger"
	"txn-classifier/internal/usecase"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Timestamp: time.Now().UTC()})
}

func (s *Server) classify(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		s.abort(c, http.StatusBadRequest, NewAPIError(ErrCodeInvalidArgument, "could not read request body"))
		return
	}

	req, err := decodeClassifyRequest(body)
	if err != nil {
		s.abort(c, http.StatusBadRequest, NewAPIError(ErrCodeInvalidArgument, err.Error()))
		return
	}

	report := s.engine.RunRaw(req.Transactions, req.Overrides, req.ProvisionalOverrides)
	c.JSON(http.StatusOK, report)
}

func decodeClassifyRequest(body []byte) (ClassifyRequest, error) {
	var req ClassifyRequest
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		raws, err := domain.DecodeBatch(trimmed)
		if err != nil {
			return req, err
		}
		req.Transactions = raws
		return req, nil
	}

	if err := json.Unmarshal(trimmed, &req); err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			return req, err
		}
		return req, fmt.Errorf("%w: malformed request body: %v", domain.ErrInvalidArgument, err)
	}
	if req.Transactions == nil {
		return req, fmt.Errorf("%w: transactions must be a JSON array", domain.ErrInvalidArgument)
	}
	return req, nil
}

func (s *Server) getDashboard(c *gin.Context) {
	if s.dashboard == nil {
		s.abort(c, http.StatusServiceUnavailable, NewAPIError(ErrCodeNotConfigured, "no transaction source configured"))
		return
	}

	tf, err := parseTimeframe(c.Query("start_date"), c.Query("end_date"), s.engine.Location())
	if err != nil {
		s.abort(c, http.StatusBadRequest, NewAPIError(ErrCodeInvalidArgument, err.Error()))
		return
	}

	report, err := s.dashboard.Build(c.Request.Context(), tf, nil)
	if err != nil {
		log := logger.FromContext(c.Request.Context())
		log.Error().Err(err).Msg("dashboard build failed")
		s.abort(c, http.StatusInternalServerError, InternalError())
		return
	}
	c.JSON(http.StatusOK, report)
}

func parseTimeframe(start, end string, loc *time.Location) (usecase.Timeframe, error) {
	var tf usecase.Timeframe
	var err error
	if start != "" {
		if tf.Start, err = time.ParseInLocation(time.DateOnly, start, loc); err != nil {
			return tf, fmt.Errorf("start_date must be YYYY-MM-DD")
		}
	}
	if end != "" {
		if tf.End, err = time.ParseInLocation(time.DateOnly, end, loc); err != nil {
			return tf, fmt.Errorf("end_date must be YYYY-MM-DD")
		}
	}
	if !tf.Start.IsZero() && !tf.End.IsZero() && tf.End.Before(tf.Start) {
		return tf, fmt.Errorf("end_date is before start_date")
	}
	return tf, nil
}

func (s *Server) putOverride(c *gin.Context) {
	if s.dashboard == nil {
		s.abort(c, http.StatusServiceUnavailable, NewAPIError(ErrCodeNotConfigured, "no override store configured"))
		return
	}

	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abort(c, http.StatusBadRequest, NewAPIError(ErrCodeInvalidArgument, "body must be {\"type\": \"...\"}"))
		return
	}

	id := c.Param("id")
	typ, err := s.dashboard.Tag(c.Request.Context(), id, req.Type)
	if err != nil {
		s.overrideError(c, err)
		return
	}
	c.JSON(http.StatusOK, TagResponse{TransactionID: id, Type: typ})
}

func (s *Server) deleteOverride(c *gin.Context) {
	if s.dashboard == nil {
		s.abort(c, http.StatusServiceUnavailable, NewAPIError(ErrCodeNotConfigured, "no override store configured"))
		return
	}

	if err := s.dashboard.Untag(c.Request.Context(), c.Param("id")); err != nil {
		s.overrideError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) overrideError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		s.abort(c, http.StatusBadRequest, NewAPIError(ErrCodeInvalidArgument, err.Error()))
	case errors.Is(err, usecase.ErrOverridesReadOnly):
		s.abort(c, http.StatusConflict, NewAPIError(ErrCodeReadOnly, err.Error()))
	default:
		log := logger.FromContext(c.Request.Context())
		log.Error().Err(err).Str("transaction_id", c.Param("id")).Msg("override update failed")
		s.abort(c, http.StatusInternalServerError, InternalError())
	}
}

func (s *Server) abort(c *gin.Context, status int, apiErr APIError) {
	c.AbortWithStatusJSON(status, apiErr)
}
