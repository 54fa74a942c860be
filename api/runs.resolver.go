package api

import (
	"errors"
	"fmt"

	"fincast/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (m ApiHandler) listRuns(c *gin.Context) {
	listings, err := m.RunRepository.List()
	if err != nil {
		returnErrorJson(fmt.Errorf("failed to list runs: %w", err), c)
		return
	}
	c.JSON(200, gin.H{"runs": listings})
}

func (m ApiHandler) getRun(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		returnErrorJsonCode(fmt.Errorf("invalid run id: %w", err), c, 400)
		return
	}

	result, err := m.RunRepository.Get(runID)
	if errors.Is(err, repository.ErrRunNotFound) {
		returnErrorJsonCode(err, c, 404)
		return
	}
	if err != nil {
		returnErrorJson(fmt.Errorf("failed to load run: %w", err), c)
		return
	}

	c.JSON(200, result)
}
