package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// membershipTable names a two-column join table used for toggles.
type membershipTable struct {
	name     string
	leftCol  string
	rightCol string
}

var (
	followsTable      = membershipTable{name: "follows", leftCol: "follower_id", rightCol: "following_id"}
	postLikesTable    = membershipTable{name: "post_likes", leftCol: "post_id", rightCol: "user_id"}
	postRepostsTable  = membershipTable{name: "post_reposts", leftCol: "post_id", rightCol: "user_id"}
	commentLikesTable = membershipTable{name: "comment_likes", leftCol: "comment_id", rightCol: "user_id"}
)

// toggleQuery deletes the (left, right) row if it exists, otherwise inserts it.
// Both happen in one statement, so concurrent toggles cannot both insert.
// The result is true when the row exists afterwards.
func (t membershipTable) toggleQuery() string {
	return fmt.Sprintf(`
		WITH deleted AS (
			DELETE FROM %[1]s WHERE %[2]s = $1 AND %[3]s = $2
			RETURNING 1
		),
		inserted AS (
			INSERT INTO %[1]s (%[2]s, %[3]s)
			SELECT $1, $2
			WHERE NOT EXISTS (SELECT 1 FROM deleted)
			ON CONFLICT (%[2]s, %[3]s) DO NOTHING
			RETURNING 1
		)
		SELECT NOT EXISTS (SELECT 1 FROM deleted)
	`, t.name, t.leftCol, t.rightCol)
}

func toggleMembership(ctx context.Context, db *sqlx.DB, t membershipTable, left, right int64) (bool, error) {
	var active bool
	if err := db.GetContext(ctx, &active, t.toggleQuery(), left, right); err != nil {
		return false, fmt.Errorf("failed to toggle %s: %w", t.name, err)
	}
	return active, nil
}
