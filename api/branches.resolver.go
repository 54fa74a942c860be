package api

import (
	"fmt"

	"fincast/internal/app"

	"github.com/gin-gonic/gin"
)

// simulateBranches runs the trunk plus every branch the scenario defines
// and returns the per-run packets alongside the merged comparison.
func (m ApiHandler) simulateBranches(c *gin.Context) {
	var requestBody SimulateRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	if len(requestBody.Scenario.Branches) == 0 {
		returnErrorJsonCode(fmt.Errorf("scenario defines no branches"), c, 400)
		return
	}
	if err := requestBody.Scenario.Validate(); err != nil {
		returnErrorJsonCode(fmt.Errorf("invalid scenario: %w", err), c, 400)
		return
	}

	resp, err := m.SimulationHandler.RunScenario(app.RunScenarioInput{
		Scenario: &requestBody.Scenario,
		Store:    requestBody.Store,
	})
	if err != nil {
		returnErrorJson(fmt.Errorf("failed to run simulation: %w", err), c)
		return
	}

	c.JSON(200, resp)
}
