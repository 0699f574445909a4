package serializer

import "socialhub/internal/model"

// CommentTree indexes a flat, oldest-first comment list by parent so reply
// subtrees can be rendered without further queries.
type CommentTree struct {
	children map[int64][]*model.Comment
	roots    map[int64][]*model.Comment
}

// BuildCommentTree groups comments by parent. Input order is kept within each
// group, so an oldest-first list yields oldest-first replies.
func BuildCommentTree(all []model.Comment) *CommentTree {
	t := &CommentTree{
		children: make(map[int64][]*model.Comment),
		roots:    make(map[int64][]*model.Comment),
	}
	for i := range all {
		c := &all[i]
		if c.ParentID == nil {
			t.roots[c.PostID] = append(t.roots[c.PostID], c)
		} else {
			t.children[*c.ParentID] = append(t.children[*c.ParentID], c)
		}
	}
	return t
}

// Roots renders the top-level comments of a post with their replies.
func (t *CommentTree) Roots(postID int64) []CommentRepresentation {
	roots := t.roots[postID]
	out := make([]CommentRepresentation, len(roots))
	for i, c := range roots {
		out[i] = t.render(c, map[int64]bool{})
	}
	return out
}

// Render renders c with its reply subtree.
func (t *CommentTree) Render(c *model.Comment) CommentRepresentation {
	return t.render(c, map[int64]bool{})
}

func (t *CommentTree) render(c *model.Comment, visiting map[int64]bool) CommentRepresentation {
	visiting[c.ID] = true
	defer delete(visiting, c.ID)

	replies := make([]CommentRepresentation, 0, len(t.children[c.ID]))
	for _, child := range t.children[c.ID] {
		if visiting[child.ID] {
			continue
		}
		replies = append(replies, t.render(child, visiting))
	}

	return CommentRepresentation{
		ID:         c.ID,
		Post:       c.PostID,
		Parent:     c.ParentID,
		Username:   c.AuthorUsername,
		Content:    c.Content,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
		LikesCount: c.LikesCount,
		Replies:    replies,
	}
}
