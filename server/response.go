package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/transcriptflow/errors"
)

// errorBody is the error envelope returned to clients. Internal causes
// and stack traces never leave the process.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": errorBody{Code: code, Message: message}})
}

// respondPipelineError maps a pipeline error to an HTTP status: invalid
// input is the client's fault, transient conditions are 503, everything
// else is a 500.
func respondPipelineError(c *gin.Context, err error) {
	pe, ok := errors.AsPipelineError(err)
	if !ok {
		respondError(c, http.StatusInternalServerError, string(errors.ErrCodeInternal), "internal error")
		return
	}
	status := http.StatusInternalServerError
	switch {
	case pe.Code == errors.ErrCodeMalformedTranscript,
		pe.Code == errors.ErrCodeInvalidIdentityInput,
		pe.Code == errors.ErrCodeInvalidInput:
		status = http.StatusBadRequest
	case pe.Retryable:
		status = http.StatusServiceUnavailable
	}
	respondError(c, status, string(pe.Code), pe.Message)
}
