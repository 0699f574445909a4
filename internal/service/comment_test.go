package service

import (
	"context"
	"errors"
	"testing"

	"socialhub/internal/model"
	"socialhub/internal/queue"
	"socialhub/internal/testutil"
)

type commentFixture struct {
	store    *testutil.Store
	comments *CommentService
	posts    *PostService
	pub      *recordingPublisher
	author   *model.User
	other    *model.User
	post     *model.Post
}

func newCommentFixture(t *testing.T) *commentFixture {
	t.Helper()
	store := testutil.NewStore()
	pub := &recordingPublisher{}
	posts := NewPostService(store.Posts(), store.Users(), queue.NewEmitter(pub))
	f := &commentFixture{
		store:    store,
		comments: NewCommentService(store.Comments(), store.Posts(), queue.NewEmitter(pub)),
		posts:    posts,
		pub:      pub,
		author:   createUser(t, store, "author"),
		other:    createUser(t, store, "other"),
	}
	f.post = createPost(t, posts, f.author.ID, "post")
	return f
}

func TestCommentService_CreateAndReply(t *testing.T) {
	ctx := context.Background()
	f := newCommentFixture(t)

	root, err := f.comments.Create(ctx, f.other.ID, &model.CreateCommentRequest{PostID: f.post.ID, Content: "nice"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if root.AuthorID != f.other.ID || root.ParentID != nil || root.AuthorUsername != "other" {
		t.Errorf("root = %+v", root)
	}

	reply, err := f.comments.Reply(ctx, f.author.ID, root.ID, &model.ReplyRequest{Content: "thanks"})
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	if reply.PostID != f.post.ID || reply.ParentID == nil || *reply.ParentID != root.ID {
		t.Errorf("reply = %+v, want parent %d on post %d", reply, root.ID, f.post.ID)
	}

	list, count, err := f.comments.List(ctx, model.CommentFilter{PostID: &f.post.ID}, model.DefaultPage())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if count != 2 || list[0].ID != root.ID {
		t.Errorf("list = %+v, want oldest-first", list)
	}
}

func TestCommentService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	f := newCommentFixture(t)
	otherPost := createPost(t, f.posts, f.other.ID, "elsewhere")
	foreign, err := f.comments.Create(ctx, f.other.ID, &model.CreateCommentRequest{PostID: otherPost.ID, Content: "x"})
	if err != nil {
		t.Fatal(err)
	}
	missing := int64(999)

	tests := []struct {
		name  string
		req   model.CreateCommentRequest
		field string
	}{
		{"missing post", model.CreateCommentRequest{Content: "x"}, "post"},
		{"unknown post", model.CreateCommentRequest{PostID: 4242, Content: "x"}, "post"},
		{"blank content", model.CreateCommentRequest{PostID: f.post.ID, Content: " "}, "content"},
		{"unknown parent", model.CreateCommentRequest{PostID: f.post.ID, ParentID: &missing, Content: "x"}, "parent"},
		{"parent on another post", model.CreateCommentRequest{PostID: f.post.ID, ParentID: &foreign.ID, Content: "x"}, "parent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.comments.Create(ctx, f.author.ID, &tt.req)
			var verr *model.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error = %v, want ValidationError", err)
			}
			if len(verr.Fields[tt.field]) == 0 {
				t.Errorf("fields = %v, want error on %q", verr.Fields, tt.field)
			}
		})
	}
}

func TestCommentService_OwnerOnlyWrites(t *testing.T) {
	ctx := context.Background()
	f := newCommentFixture(t)
	c, _ := f.comments.Create(ctx, f.author.ID, &model.CreateCommentRequest{PostID: f.post.ID, Content: "mine"})

	if _, err := f.comments.Update(ctx, f.other.ID, c.ID, &model.UpdateCommentRequest{Content: strPtr("hijack")}, true); !errors.Is(err, model.ErrForbidden) {
		t.Errorf("Update() by non-author error = %v, want ErrForbidden", err)
	}
	if err := f.comments.Delete(ctx, f.other.ID, c.ID); !errors.Is(err, model.ErrForbidden) {
		t.Errorf("Delete() by non-author error = %v, want ErrForbidden", err)
	}

	updated, err := f.comments.Update(ctx, f.author.ID, c.ID, &model.UpdateCommentRequest{Content: strPtr("edited")}, false)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Content != "edited" {
		t.Errorf("content = %q, want edited", updated.Content)
	}
}

func TestCommentService_DeleteCascadesReplies(t *testing.T) {
	ctx := context.Background()
	f := newCommentFixture(t)
	root, _ := f.comments.Create(ctx, f.author.ID, &model.CreateCommentRequest{PostID: f.post.ID, Content: "root"})
	reply, _ := f.comments.Reply(ctx, f.other.ID, root.ID, &model.ReplyRequest{Content: "reply"})

	if err := f.comments.Delete(ctx, f.author.ID, root.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := f.comments.Get(ctx, reply.ID); !errors.Is(err, model.ErrCommentNotFound) {
		t.Errorf("reply should be deleted with its parent, got %v", err)
	}
}

func TestCommentService_ToggleLike(t *testing.T) {
	ctx := context.Background()
	f := newCommentFixture(t)
	c, _ := f.comments.Create(ctx, f.author.ID, &model.CreateCommentRequest{PostID: f.post.ID, Content: "like"})

	res, err := f.comments.ToggleLike(ctx, f.other.ID, c.ID)
	if err != nil || !res.Active || res.Count != 1 {
		t.Fatalf("first toggle = (%+v, %v)", res, err)
	}
	res, err = f.comments.ToggleLike(ctx, f.other.ID, c.ID)
	if err != nil || res.Active || res.Count != 0 {
		t.Fatalf("second toggle = (%+v, %v)", res, err)
	}
	if got := f.pub.types(); len(got) != 1 || got[0] != queue.EventCommentLiked {
		t.Errorf("events = %v", got)
	}
}
