package storage

import (
	"database/sql"
	"fmt"
)

// Schema version tracking
const currentSchemaVersion = 1

// initializeSchema creates all tables for a new database
func (db *DB) initializeSchema() error {
	return db.WithTx(func(tx *sql.Tx) error {
		if err := createSchemaVersionTable(tx); err != nil {
			return err
		}
		for _, create := range []func(*sql.Tx) error{
			createPassesTable,
			createLanesTable,
			createBranchEntriesTable,
			createNodesTable,
			createViolationsTable,
		} {
			if err := create(tx); err != nil {
				return err
			}
		}
		if err := setSchemaVersion(tx, currentSchemaVersion); err != nil {
			return err
		}

		db.logger.Debug("Database schema initialized", "version", currentSchemaVersion)
		return nil
	})
}

// runMigrations runs any pending schema migrations
func (db *DB) runMigrations() error {
	version, err := db.getSchemaVersion()
	if err != nil {
		return err
	}

	if version == currentSchemaVersion {
		return nil
	}
	if version == 0 {
		return db.initializeSchema()
	}
	return fmt.Errorf("unsupported schema version %d (want %d)", version, currentSchemaVersion)
}

// getSchemaVersion gets the current schema version
func (db *DB) getSchemaVersion() (int, error) {
	var tableName string
	err := db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&tableName)

	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var version int
	err = db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return version, nil
}

// setSchemaVersion sets the schema version
func setSchemaVersion(tx *sql.Tx, version int) error {
	_, err := tx.Exec("DELETE FROM schema_version")
	if err != nil {
		return err
	}
	_, err = tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}

func createSchemaVersionTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	return err
}

func createPassesTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS passes (
			pass_id TEXT PRIMARY KEY,
			mode TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			node_count INTEGER NOT NULL,
			lane_count INTEGER NOT NULL,
			branch_count INTEGER NOT NULL,
			created_at TEXT NOT NULL
		)
	`)
	return err
}

// createLanesTable stores one row per lane member.
func createLanesTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS lane_members (
			pass_id TEXT NOT NULL REFERENCES passes(pass_id) ON DELETE CASCADE,
			depth INTEGER NOT NULL,
			sibling_key TEXT NOT NULL,
			position INTEGER NOT NULL,
			node_id TEXT NOT NULL,
			PRIMARY KEY (pass_id, sibling_key, position)
		)
	`)
	if err != nil {
		return err
	}
	_, err = tx.Exec(`CREATE INDEX IF NOT EXISTS idx_lane_members_node ON lane_members(pass_id, node_id)`)
	return err
}

// createBranchEntriesTable stores one row per (branch, depth, id).
func createBranchEntriesTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS branch_entries (
			pass_id TEXT NOT NULL REFERENCES passes(pass_id) ON DELETE CASCADE,
			branch_key TEXT NOT NULL,
			depth INTEGER NOT NULL,
			sibling_key TEXT NOT NULL,
			position INTEGER NOT NULL,
			node_id TEXT NOT NULL,
			PRIMARY KEY (pass_id, branch_key, depth, position)
		)
	`)
	return err
}

func createNodesTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS nodes (
			pass_id TEXT NOT NULL REFERENCES passes(pass_id) ON DELETE CASCADE,
			node_id TEXT NOT NULL,
			depth INTEGER NOT NULL,
			sibling_key TEXT NOT NULL,
			branch_key TEXT NOT NULL,
			lane_index INTEGER NOT NULL,
			registration INTEGER NOT NULL,
			PRIMARY KEY (pass_id, node_id)
		)
	`)
	return err
}

func createViolationsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS violations (
			pass_id TEXT NOT NULL REFERENCES passes(pass_id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			code TEXT NOT NULL,
			node_id TEXT NOT NULL,
			depth INTEGER NOT NULL,
			previous_depth INTEGER NOT NULL,
			message TEXT NOT NULL,
			PRIMARY KEY (pass_id, seq)
		)
	`)
	return err
}
