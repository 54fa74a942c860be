package api

import (
	"fmt"

	"fincast/internal/app"
	"fincast/internal/config"

	"github.com/gin-gonic/gin"
)

type SimulateRequest struct {
	Scenario config.Scenario `json:"scenario"`
	Store    bool            `json:"store"`
}

// simulate runs one scenario (trunk only) and returns its result packet.
// Branch specs in the request body are ignored here; POST /simulate/branches
// runs the full trunk-plus-branches workload.
func (m ApiHandler) simulate(c *gin.Context) {
	var requestBody SimulateRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	scenario := requestBody.Scenario
	scenario.Branches = nil

	if err := scenario.Validate(); err != nil {
		returnErrorJsonCode(fmt.Errorf("invalid scenario: %w", err), c, 400)
		return
	}

	resp, err := m.SimulationHandler.RunScenario(app.RunScenarioInput{
		Scenario: &scenario,
		Store:    requestBody.Store,
	})
	if err != nil {
		returnErrorJson(fmt.Errorf("failed to run simulation: %w", err), c)
		return
	}

	c.JSON(200, resp.Trunk)
}
