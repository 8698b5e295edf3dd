package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/atlasprompt/internal/model"
	"github.com/ppiankov/atlasprompt/internal/pipeline"
)

// errorBody is the JSON error envelope
type errorBody struct {
	Error       string `json:"error"`
	Details     string `json:"details,omitempty"`
	RawResponse string `json:"raw_response,omitempty"`
	Status      int    `json:"upstream_status,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}

// respondError maps pipeline errors onto status codes and the error envelope
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	body := errorBody{Details: err.Error(), RequestID: c.GetString("request_id")}
	status := http.StatusInternalServerError

	var upstreamErr *model.UpstreamError

	switch {
	case errors.Is(err, pipeline.ErrEmptyPrompt):
		status = http.StatusBadRequest
		body.Error = "A location prompt is required"

	case errors.Is(err, pipeline.ErrNoResult):
		status = http.StatusNotFound
		body.Error = "No places have been extracted yet"

	case model.IsInvalidUpstreamData(err):
		status = http.StatusBadGateway
		body.Error = "Could not parse response from the extraction service"
		if raw, ok := model.RawResponse(err); ok {
			body.RawResponse = raw
		}

	case errors.As(err, &upstreamErr):
		status = http.StatusBadGateway
		body.Status = upstreamErr.Status
		if upstreamErr.Collaborator == "rendering" {
			body.Error = "The map rendering service failed"
		} else {
			body.Error = "The extraction service failed"
		}

	default:
		body.Error = "Internal error"
	}

	c.AbortWithStatusJSON(status, body)
}
