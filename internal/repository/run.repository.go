package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fincast/internal/output"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var ErrRunNotFound = errors.New("run not found")

// RunListing is the lightweight per-run row returned by List.
type RunListing struct {
	RunID        uuid.UUID `json:"run_id"`
	Scenario     string    `json:"scenario"`
	CreatedAt    time.Time `json:"created_at"`
	FinalBalance float64   `json:"final_balance"`
	HealthScore  float64   `json:"health_score"`
}

type RunRepository interface {
	Add(result *output.Result) error
	Get(runID uuid.UUID) (*output.Result, error)
	List() ([]RunListing, error)
	Close() error
}

type runRepositoryHandler struct {
	db *sql.DB
}

// NewRunRepository opens (or creates) the SQLite run store. Result packets
// are stored as JSON blobs; the scalar columns exist for listing without
// decoding every packet.
func NewRunRepository(dbPath string) (RunRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		run_id        TEXT PRIMARY KEY,
		scenario      TEXT,
		created_at    INTEGER NOT NULL,
		final_balance REAL,
		health_score  REAL,
		packet        TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate runs table: %w", err)
	}

	return &runRepositoryHandler{db: db}, nil
}

func (h *runRepositoryHandler) Add(result *output.Result) error {
	packet, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result packet: %w", err)
	}

	_, err = h.db.Exec(
		`INSERT INTO runs (run_id, scenario, created_at, final_balance, health_score, packet)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		result.RunID.String(),
		result.Scenario,
		time.Now().UTC().Unix(),
		result.FinalBalance,
		result.HealthScore,
		string(packet),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", result.RunID, err)
	}
	return nil
}

func (h *runRepositoryHandler) Get(runID uuid.UUID) (*output.Result, error) {
	var packet string
	err := h.db.QueryRow(`SELECT packet FROM runs WHERE run_id = ?`, runID.String()).Scan(&packet)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run %s: %w", runID, err)
	}

	result := &output.Result{}
	if err := json.Unmarshal([]byte(packet), result); err != nil {
		return nil, fmt.Errorf("failed to decode packet for run %s: %w", runID, err)
	}
	return result, nil
}

func (h *runRepositoryHandler) List() ([]RunListing, error) {
	rows, err := h.db.Query(
		`SELECT run_id, scenario, created_at, final_balance, health_score
		 FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	listings := []RunListing{}
	for rows.Next() {
		var (
			id        string
			listing   RunListing
			createdAt int64
		)
		err = rows.Scan(&id, &listing.Scenario, &createdAt, &listing.FinalBalance, &listing.HealthScore)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		listing.RunID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid run id %q: %w", id, err)
		}
		listing.CreatedAt = time.Unix(createdAt, 0).UTC()
		listings = append(listings, listing)
	}
	return listings, rows.Err()
}

func (h *runRepositoryHandler) Close() error {
	return h.db.Close()
}
