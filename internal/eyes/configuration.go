// Package eyes is a client for the Applitools Eyes visual-testing service.
//
// A test opens an Eyes session over a browser.Driver, uploads checkpoints with
// Check and stops the session with Close, CloseAsync or Abort. Sessions that
// share a ClassicRunner are collected into one TestResultsSummary by
// GetAllTestResults.
package eyes

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/acmebank/visualtests/internal/config"
)

// RectangleSize is a viewport size in CSS pixels
type RectangleSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// IsEmpty reports whether either dimension is unset
func (r RectangleSize) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

func (r RectangleSize) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// BatchInfo groups the tests of one run on the dashboard
type BatchInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartedAt time.Time `json:"startedAt"`
}

// NewBatchInfo creates a batch with a fresh ID
func NewBatchInfo(name string) BatchInfo {
	return BatchInfo{
		ID:        uuid.NewString(),
		Name:      name,
		StartedAt: time.Now().UTC(),
	}
}

// Configuration is applied to each Eyes instance before Open
type Configuration struct {
	APIKey       string
	ServerURL    string
	AppName      string
	Batch        BatchInfo
	ViewportSize RectangleSize
	MatchLevel   MatchLevel
}

// NewConfiguration builds a Configuration from environment configuration.
// A configured batch ID is kept so CI runs can share one batch.
func NewConfiguration(cfg *config.EyesConfig) Configuration {
	batch := NewBatchInfo(cfg.BatchName)
	if cfg.BatchID != "" {
		batch.ID = cfg.BatchID
	}
	return Configuration{
		APIKey:     cfg.APIKey,
		ServerURL:  cfg.ServerURL,
		AppName:    cfg.AppName,
		Batch:      batch,
		MatchLevel: MatchLevelStrict,
	}
}

// MatchLevel is how strictly a checkpoint is compared with its baseline
type MatchLevel string

const (
	MatchLevelStrict  MatchLevel = "Strict"
	MatchLevelLayout  MatchLevel = "Layout"
	MatchLevelContent MatchLevel = "Content"
	MatchLevelExact   MatchLevel = "Exact"
)
