package api

import (
	"errors"
	"fmt"

	"fincast/internal/output"
	"fincast/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ExplainRequest struct {
	// RunID loads a stored packet; Result supplies one inline. Exactly one
	// must be set.
	RunID  *uuid.UUID     `json:"run_id"`
	Result *output.Result `json:"result"`
}

type ExplainResponse struct {
	Explanation string `json:"explanation"`
}

// explain produces a natural-language summary of a result packet.
func (m ApiHandler) explain(c *gin.Context) {
	if m.ExplainRepository == nil {
		returnErrorJsonCode(fmt.Errorf("explanation service is not configured"), c, 503)
		return
	}

	var requestBody ExplainRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	result := requestBody.Result
	if requestBody.RunID != nil {
		stored, err := m.RunRepository.Get(*requestBody.RunID)
		if errors.Is(err, repository.ErrRunNotFound) {
			returnErrorJsonCode(err, c, 404)
			return
		}
		if err != nil {
			returnErrorJson(err, c)
			return
		}
		result = stored
	}
	if result == nil {
		returnErrorJsonCode(fmt.Errorf("either run_id or result is required"), c, 400)
		return
	}

	explanation, err := m.ExplainRepository.ExplainResult(c.Request.Context(), result)
	if err != nil {
		returnErrorJson(fmt.Errorf("failed to explain result: %w", err), c)
		return
	}

	c.JSON(200, ExplainResponse{Explanation: explanation})
}
