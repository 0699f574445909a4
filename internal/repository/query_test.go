package repository

import (
	"strings"
	"testing"

	"socialhub/internal/model"
)

func int64Ptr(v int64) *int64 { return &v }

func TestToggleQuery_UsesTableColumns(t *testing.T) {
	tests := []struct {
		table membershipTable
		want  []string
	}{
		{followsTable, []string{
			"DELETE FROM follows WHERE follower_id = $1 AND following_id = $2",
			"INSERT INTO follows (follower_id, following_id)",
			"ON CONFLICT (follower_id, following_id) DO NOTHING",
		}},
		{postLikesTable, []string{
			"DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2",
			"INSERT INTO post_likes (post_id, user_id)",
		}},
		{commentLikesTable, []string{
			"DELETE FROM comment_likes WHERE comment_id = $1 AND user_id = $2",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.table.name, func(t *testing.T) {
			query := tt.table.toggleQuery()
			for _, fragment := range tt.want {
				if !strings.Contains(query, fragment) {
					t.Errorf("expected query to contain %q:\n%s", fragment, query)
				}
			}
		})
	}
}

func TestPostConditions(t *testing.T) {
	tests := []struct {
		name      string
		filter    model.PostFilter
		wantConds []string
		wantArgs  int
	}{
		{"no filter", model.PostFilter{}, nil, 0},
		{"author", model.PostFilter{AuthorID: int64Ptr(1)}, []string{"p.author_id = $1"}, 1},
		{
			"feed",
			model.PostFilter{FeedOf: int64Ptr(2)},
			[]string{"p.author_id IN (SELECT following_id FROM follows WHERE follower_id = $1)"},
			1,
		},
		{
			"explore excludes self and followed",
			model.PostFilter{ExploreFor: int64Ptr(3)},
			[]string{"p.author_id <> $1 AND p.author_id NOT IN (SELECT following_id FROM follows WHERE follower_id = $1)"},
			1,
		},
		{
			"placeholders follow argument order",
			model.PostFilter{AuthorID: int64Ptr(1), LikedBy: int64Ptr(2)},
			[]string{
				"p.author_id = $1",
				"EXISTS (SELECT 1 FROM post_likes l WHERE l.post_id = p.id AND l.user_id = $2)",
			},
			2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conds, args := postConditions(tt.filter)

			if len(args) != tt.wantArgs {
				t.Errorf("expected %d args, got %d", tt.wantArgs, len(args))
			}
			if len(conds) != len(tt.wantConds) {
				t.Fatalf("expected %d conditions, got %v", len(tt.wantConds), conds)
			}
			for i := range conds {
				if conds[i] != tt.wantConds[i] {
					t.Errorf("condition %d: expected %q, got %q", i, tt.wantConds[i], conds[i])
				}
			}
		})
	}
}
