package mlmodel

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"demand-api/internal/features"
)

// Manifest ties the four trained artifacts to one training run. The schema
// checksum is recomputed from features.json at load time; a mismatched set
// of artifacts fails startup instead of silently predicting garbage.
type Manifest struct {
	Version      string    `json:"version"`
	TrainedAt    time.Time `json:"trained_at"`
	SchemaSHA256 string    `json:"schema_sha256"`
}

// Bundle is the immutable, load-once model state shared by all request
// handlers. It is constructed at startup and passed explicitly; nothing in
// it changes after LoadBundle returns.
type Bundle struct {
	Version        string
	TrainedAt      time.Time
	Schema         []string
	TimeColumns    []string
	WeatherColumns []string
	Zones          []int
	Scaler         *MinMaxScaler
	Model          *Ensemble
}

// LoadBundle reads and cross-validates the artifact bundle from dir. Any
// missing, corrupt, or mismatched artifact is an error; the caller treats
// that as fatal.
func LoadBundle(dir string) (*Bundle, error) {
	var manifest Manifest
	if err := readJSON(filepath.Join(dir, "manifest.json"), &manifest); err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}

	var schema []string
	if err := readJSON(filepath.Join(dir, "features.json"), &schema); err != nil {
		return nil, fmt.Errorf("feature schema: %w", err)
	}
	if len(schema) == 0 {
		return nil, fmt.Errorf("feature schema is empty")
	}

	if sum := SchemaChecksum(schema); sum != manifest.SchemaSHA256 {
		return nil, fmt.Errorf("schema checksum %s does not match manifest %s: artifacts are from different training runs", sum, manifest.SchemaSHA256)
	}

	var zones []int
	if err := readJSON(filepath.Join(dir, "zones.json"), &zones); err != nil {
		return nil, fmt.Errorf("zone order: %w", err)
	}
	if len(zones) == 0 {
		return nil, fmt.Errorf("zone order is empty")
	}

	scaler := &MinMaxScaler{}
	if err := readJSON(filepath.Join(dir, "scaler.json"), scaler); err != nil {
		return nil, fmt.Errorf("scaler: %w", err)
	}
	if err := scaler.validate(schema); err != nil {
		return nil, fmt.Errorf("scaler: %w", err)
	}

	model := &Ensemble{}
	if err := readJSON(filepath.Join(dir, "model.json"), model); err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}
	if err := model.validate(len(schema)); err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}
	if len(model.Estimators) != len(zones) {
		return nil, fmt.Errorf("model has %d estimators but zone order lists %d zones", len(model.Estimators), len(zones))
	}

	timeCols, weatherCols := features.SplitSchema(schema)

	return &Bundle{
		Version:        manifest.Version,
		TrainedAt:      manifest.TrainedAt,
		Schema:         schema,
		TimeColumns:    timeCols,
		WeatherColumns: weatherCols,
		Zones:          zones,
		Scaler:         scaler,
		Model:          model,
	}, nil
}

// SchemaChecksum is the digest embedded in the manifest by the training
// job: SHA-256 over the newline-joined feature names.
func SchemaChecksum(schema []string) string {
	sum := sha256.Sum256([]byte(strings.Join(schema, "\n")))
	return hex.EncodeToString(sum[:])
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}
