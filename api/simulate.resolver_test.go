package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"fincast/internal/app"
	"fincast/internal/config"
	"fincast/internal/logger"
	"fincast/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestApi(t *testing.T, jwtSecret string) ApiHandler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo, err := repository.NewRunRepository(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	log := logger.New()
	return ApiHandler{
		SimulationHandler: app.SimulationHandler{
			RunRepository: repo,
			Logger:        log,
		},
		RunRepository:  repo,
		JwtDecodeToken: jwtSecret,
		Logger:         log,
	}
}

func doRequest(handler ApiHandler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	router := handler.InitializeRouterEngine()

	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func apiScenario() config.Scenario {
	return config.Scenario{
		Name:           "api-test",
		StartDate:      "2025-01-01",
		HorizonDays:    60,
		Seed:           42,
		BaseCurrency:   "USD",
		InitialBalance: 5000,
		IncomeSources: []config.CashFlowSpec{
			{ID: "salary", Name: "salary", Amount: 100, Currency: "USD", Frequency: "daily"},
		},
		ExpenseItems: []config.CashFlowSpec{
			{ID: "rent", Name: "rent", Amount: 60, Currency: "USD", Frequency: "daily"},
		},
	}
}

func Test_SimulateResolver(t *testing.T) {
	t.Run("runs a scenario", func(t *testing.T) {
		handler := newTestApi(t, "")
		w := doRequest(handler, "POST", "/simulate", SimulateRequest{Scenario: apiScenario()}, nil)
		require.Equal(t, 200, w.Code)

		var packet map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &packet))
		require.Contains(t, packet, "final_balance")
		require.Contains(t, packet, "vibe_state")
		require.Len(t, packet["balance_history"], 60)
	})

	t.Run("rejects invalid scenario", func(t *testing.T) {
		handler := newTestApi(t, "")
		scenario := apiScenario()
		scenario.HorizonDays = 0
		w := doRequest(handler, "POST", "/simulate", SimulateRequest{Scenario: scenario}, nil)
		require.Equal(t, 400, w.Code)
	})

	t.Run("store flag persists the run", func(t *testing.T) {
		handler := newTestApi(t, "")
		w := doRequest(handler, "POST", "/simulate", SimulateRequest{Scenario: apiScenario(), Store: true}, nil)
		require.Equal(t, 200, w.Code)

		listings, err := handler.RunRepository.List()
		require.NoError(t, err)
		require.Len(t, listings, 1)
	})
}

func Test_SimulateBranchesResolver(t *testing.T) {
	handler := newTestApi(t, "")

	t.Run("requires branches", func(t *testing.T) {
		w := doRequest(handler, "POST", "/simulate/branches", SimulateRequest{Scenario: apiScenario()}, nil)
		require.Equal(t, 400, w.Code)
	})

	t.Run("returns trunk branches and comparison", func(t *testing.T) {
		scenario := apiScenario()
		scenario.Branches = []config.BranchSpec{
			{
				Name:        "raise",
				SnapshotDay: 30,
				IncomeSources: []config.CashFlowSpec{
					{ID: "raise", Name: "raise", Amount: 50, Currency: "USD", Frequency: "daily"},
				},
			},
		}
		w := doRequest(handler, "POST", "/simulate/branches", SimulateRequest{Scenario: scenario}, nil)
		require.Equal(t, 200, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Contains(t, resp, "trunk")
		require.Contains(t, resp, "branches")
		require.Contains(t, resp, "comparison")
	})
}

func Test_RatesResolver(t *testing.T) {
	handler := newTestApi(t, "")

	t.Run("deterministic for a fixed day", func(t *testing.T) {
		first := doRequest(handler, "GET", "/rates?day=100", nil, nil)
		second := doRequest(handler, "GET", "/rates?day=100", nil, nil)
		require.Equal(t, 200, first.Code)
		require.Equal(t, first.Body.String(), second.Body.String())

		var resp RatesResponse
		require.NoError(t, json.Unmarshal(first.Body.Bytes(), &resp))
		require.Equal(t, 100, resp.Day)
		require.Len(t, resp.Rates, 3)
		require.Equal(t, "EUR/USD", resp.Rates[0].Pair)
		require.NotZero(t, resp.Rates[0].Rate)
	})

	t.Run("rejects malformed day", func(t *testing.T) {
		w := doRequest(handler, "GET", "/rates?day=abc", nil, nil)
		require.Equal(t, 400, w.Code)
	})
}

func Test_RunsResolver(t *testing.T) {
	handler := newTestApi(t, "")

	t.Run("unknown id is 404", func(t *testing.T) {
		w := doRequest(handler, "GET", "/runs/"+uuid.NewString(), nil, nil)
		require.Equal(t, 404, w.Code)
	})

	t.Run("malformed id is 400", func(t *testing.T) {
		w := doRequest(handler, "GET", "/runs/not-a-uuid", nil, nil)
		require.Equal(t, 400, w.Code)
	})

	t.Run("stored run retrievable", func(t *testing.T) {
		w := doRequest(handler, "POST", "/simulate", SimulateRequest{Scenario: apiScenario(), Store: true}, nil)
		require.Equal(t, 200, w.Code)

		listings, err := handler.RunRepository.List()
		require.NoError(t, err)
		require.NotEmpty(t, listings)

		got := doRequest(handler, "GET", "/runs/"+listings[0].RunID.String(), nil, nil)
		require.Equal(t, 200, got.Code)
	})
}

func Test_ExplainResolver(t *testing.T) {
	handler := newTestApi(t, "")
	w := doRequest(handler, "POST", "/explain", ExplainRequest{}, nil)
	require.Equal(t, 503, w.Code)
}

func Test_AuthMiddleware(t *testing.T) {
	const secret = "test-secret"

	t.Run("missing token rejected", func(t *testing.T) {
		handler := newTestApi(t, secret)
		w := doRequest(handler, "POST", "/simulate", SimulateRequest{Scenario: apiScenario()}, nil)
		require.Equal(t, 401, w.Code)
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		handler := newTestApi(t, secret)
		token := signedToken(t, "other-secret")
		w := doRequest(handler, "POST", "/simulate", SimulateRequest{Scenario: apiScenario()}, map[string]string{
			"Authorization": "Bearer " + token,
		})
		require.Equal(t, 401, w.Code)
	})

	t.Run("valid token accepted", func(t *testing.T) {
		handler := newTestApi(t, secret)
		token := signedToken(t, secret)
		w := doRequest(handler, "POST", "/simulate", SimulateRequest{Scenario: apiScenario()}, map[string]string{
			"Authorization": "Bearer " + token,
		})
		require.Equal(t, 200, w.Code)
	})

	t.Run("read routes stay open", func(t *testing.T) {
		handler := newTestApi(t, secret)
		w := doRequest(handler, "GET", "/rates?day=1", nil, nil)
		require.Equal(t, 200, w.Code)
	})
}

func signedToken(t *testing.T, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}
