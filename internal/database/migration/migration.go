package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_electronic_structure",
		SQL: `CREATE TABLE IF NOT EXISTS electronic_structure (
  material_id       TEXT             PRIMARY KEY,
  formula_pretty    TEXT             NOT NULL DEFAULT '',
  chemsys           TEXT             NOT NULL DEFAULT '',
  elements          TEXT[]           NOT NULL DEFAULT '{}',
  band_gap          DOUBLE PRECISION NOT NULL DEFAULT 0,
  efermi            DOUBLE PRECISION NOT NULL DEFAULT 0,
  is_gap_direct     BOOLEAN          NOT NULL DEFAULT FALSE,
  is_metal          BOOLEAN          NOT NULL DEFAULT FALSE,
  magnetic_ordering TEXT,
  bandstructure     JSONB,
  dos               JSONB,
  last_updated      TIMESTAMPTZ      NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_electronic_structure_band_gap",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_electronic_structure_band_gap ON electronic_structure (band_gap);`,
	},
	{
		Name: "create_index_electronic_structure_formula",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_electronic_structure_formula ON electronic_structure (formula_pretty);`,
	},
	{
		Name: "create_index_electronic_structure_ordering",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_electronic_structure_ordering ON electronic_structure (magnetic_ordering);`,
	},
	{
		Name: "create_index_electronic_structure_is_metal",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_electronic_structure_is_metal ON electronic_structure (is_metal);`,
	},
	{
		Name: "create_index_electronic_structure_elements",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_electronic_structure_elements ON electronic_structure USING GIN (elements);`,
	},
}

// EnsureMigrated checks if the 'electronic_structure' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.electronic_structure') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	for _, step := range steps {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
