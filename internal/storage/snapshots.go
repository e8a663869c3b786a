package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	dkerrors "domkey/internal/errors"
	"domkey/internal/export"
)

// SaveSnapshot stores snap and returns the pass id it was stored under.
// A snapshot without a pass id gets a fresh one. Saving the same pass id
// again replaces the earlier rows.
func (db *DB) SaveSnapshot(snap *export.Snapshot) (string, error) {
	passID := snap.PassID
	if passID == "" {
		passID = uuid.New().String()
	}

	err := db.WithTx(func(tx *sql.Tx) error {
		for _, table := range []string{"violations", "nodes", "branch_entries", "lane_members", "passes"} {
			if _, err := tx.Exec("DELETE FROM "+table+" WHERE pass_id = ?", passID); err != nil {
				return err
			}
		}
		_, err := tx.Exec(`
			INSERT INTO passes (pass_id, mode, fingerprint, node_count, lane_count, branch_count, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, passID, string(snap.Mode), snap.Fingerprint, len(snap.Nodes), snap.Stats.Lanes,
			snap.Stats.Branches, time.Now().UTC().Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("failed to insert pass: %w", err)
		}

		for _, tier := range snap.Tiers {
			for _, lane := range tier.Lanes {
				for pos, id := range lane.Members {
					if _, err := tx.Exec(`
						INSERT INTO lane_members (pass_id, depth, sibling_key, position, node_id)
						VALUES (?, ?, ?, ?, ?)
					`, passID, tier.Depth, string(lane.Key), pos, id); err != nil {
						return fmt.Errorf("failed to insert lane member: %w", err)
					}
				}
			}
		}

		for _, br := range snap.Branches {
			for _, e := range br.Entries {
				for pos, id := range e.Value.IDs {
					if _, err := tx.Exec(`
						INSERT INTO branch_entries (pass_id, branch_key, depth, sibling_key, position, node_id)
						VALUES (?, ?, ?, ?, ?, ?)
					`, passID, string(br.Key), e.Depth, string(e.Value.SiblingKey), pos, id); err != nil {
						return fmt.Errorf("failed to insert branch entry: %w", err)
					}
				}
			}
		}

		for i, n := range snap.Nodes {
			if _, err := tx.Exec(`
				INSERT INTO nodes (pass_id, node_id, depth, sibling_key, branch_key, lane_index, registration)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, passID, n.ID, n.Depth, string(n.SiblingKey), string(n.BranchKey), n.Index, i); err != nil {
				return fmt.Errorf("failed to insert node: %w", err)
			}
		}

		for i, v := range snap.Violations {
			if _, err := tx.Exec(`
				INSERT INTO violations (pass_id, seq, code, node_id, depth, previous_depth, message)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, passID, i, string(v.Code), v.ID, v.Depth, v.Previous, v.Message); err != nil {
				return fmt.Errorf("failed to insert violation: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	db.logger.Debug("Snapshot stored", "pass", passID, "path", db.dbPath, "nodes", len(snap.Nodes))
	return passID, nil
}

// LatestPass returns the id of the most recently stored pass.
func (db *DB) LatestPass() (string, error) {
	var passID string
	err := db.QueryRow("SELECT pass_id FROM passes ORDER BY created_at DESC, rowid DESC LIMIT 1").Scan(&passID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", dkerrors.Newf(dkerrors.PassNotStored, "no pass stored in %s", db.dbPath)
	}
	return passID, err
}

// Fingerprint returns the fingerprint stored for passID.
func (db *DB) Fingerprint(passID string) (string, error) {
	var fp string
	err := db.QueryRow("SELECT fingerprint FROM passes WHERE pass_id = ?", passID).Scan(&fp)
	if errors.Is(err, sql.ErrNoRows) {
		return "", dkerrors.Newf(dkerrors.PassNotStored, "pass %s is not stored in %s", passID, db.dbPath)
	}
	return fp, err
}
