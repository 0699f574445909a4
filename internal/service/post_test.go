package service

import (
	"context"
	"errors"
	"testing"

	"socialhub/internal/model"
	"socialhub/internal/queue"
	"socialhub/internal/testutil"
)

func newPostService(store *testutil.Store) (*PostService, *recordingPublisher) {
	pub := &recordingPublisher{}
	return NewPostService(store.Posts(), store.Users(), queue.NewEmitter(pub)), pub
}

func createPost(t *testing.T, svc *PostService, authorID int64, content string) *model.Post {
	t.Helper()
	p, err := svc.Create(context.Background(), authorID, &model.CreatePostRequest{Content: content})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p
}

func postIDs(posts []model.Post) map[int64]bool {
	out := make(map[int64]bool, len(posts))
	for _, p := range posts {
		out[p.ID] = true
	}
	return out
}

func TestPostService_FeedAndExploreAreDisjoint(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore()
	a := createUser(t, store, "a")
	b := createUser(t, store, "b")
	c := createUser(t, store, "c")
	posts, _ := newPostService(store)

	if _, err := store.Follows().Toggle(ctx, a.ID, b.ID); err != nil {
		t.Fatal(err)
	}

	fromB := createPost(t, posts, b.ID, "from b")
	fromC := createPost(t, posts, c.ID, "from c")
	fromA := createPost(t, posts, a.ID, "from a")

	feed, count, err := posts.Feed(ctx, a.ID, model.DefaultPage())
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	if count != 1 || feed[0].ID != fromB.ID {
		t.Errorf("feed = %+v, want only b's post", feed)
	}

	explore, _, err := posts.Explore(ctx, a.ID, model.DefaultPage())
	if err != nil {
		t.Fatalf("Explore() error = %v", err)
	}
	if len(explore) != 1 || explore[0].ID != fromC.ID {
		t.Errorf("explore = %+v, want only c's post", explore)
	}

	inFeed := postIDs(feed)
	for _, p := range explore {
		if inFeed[p.ID] {
			t.Errorf("post %d appears in both feed and explore", p.ID)
		}
		if p.ID == fromA.ID {
			t.Error("explore must not contain the requester's own posts")
		}
	}
}

func TestPostService_ListNewestFirst(t *testing.T) {
	store := testutil.NewStore()
	u := createUser(t, store, "u")
	posts, _ := newPostService(store)

	first := createPost(t, posts, u.ID, "first")
	second := createPost(t, posts, u.ID, "second")

	list, count, err := posts.List(context.Background(), model.DefaultPage())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if count != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Errorf("list order = %+v", list)
	}
}

func TestPostService_ToggleLike(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore()
	author := createUser(t, store, "author")
	fan := createUser(t, store, "fan")
	posts, pub := newPostService(store)
	post := createPost(t, posts, author.ID, "like me")

	res, err := posts.ToggleLike(ctx, fan.ID, post.ID)
	if err != nil {
		t.Fatalf("ToggleLike() error = %v", err)
	}
	if !res.Active || res.Count != 1 {
		t.Errorf("first toggle = %+v, want liked with 1", res)
	}

	res, err = posts.ToggleLike(ctx, fan.ID, post.ID)
	if err != nil {
		t.Fatalf("ToggleLike() error = %v", err)
	}
	if res.Active || res.Count != 0 {
		t.Errorf("second toggle = %+v, want unliked with 0", res)
	}

	if got := pub.types(); len(got) != 1 || got[0] != queue.EventPostLiked {
		t.Errorf("events = %v, want one post_liked", got)
	}

	if _, err := posts.ToggleLike(ctx, fan.ID, 424242); !errors.Is(err, model.ErrPostNotFound) {
		t.Errorf("like on missing post error = %v, want ErrPostNotFound", err)
	}
}

func TestPostService_ToggleRepost(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore()
	author := createUser(t, store, "author")
	fan := createUser(t, store, "fan")
	posts, _ := newPostService(store)
	post := createPost(t, posts, author.ID, "share me")

	res, err := posts.ToggleRepost(ctx, fan.ID, post.ID)
	if err != nil || !res.Active || res.Count != 1 {
		t.Fatalf("ToggleRepost() = (%+v, %v)", res, err)
	}

	reposted, err := posts.RepostedBy(ctx, fan.ID)
	if err != nil {
		t.Fatalf("RepostedBy() error = %v", err)
	}
	if len(reposted) != 1 || reposted[0].ID != post.ID {
		t.Errorf("reposted = %+v", reposted)
	}
}

func TestPostService_CreateValidation(t *testing.T) {
	store := testutil.NewStore()
	u := createUser(t, store, "u")
	posts, _ := newPostService(store)

	_, err := posts.Create(context.Background(), u.ID, &model.CreatePostRequest{Content: "   "})

	var verr *model.ValidationError
	if !errors.As(err, &verr) || len(verr.Fields["content"]) == 0 {
		t.Errorf("error = %v, want content validation error", err)
	}
}

func TestPostService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore()
	author := createUser(t, store, "author")
	other := createUser(t, store, "other")
	posts, _ := newPostService(store)
	post := createPost(t, posts, author.ID, "draft")

	tests := []struct {
		name    string
		actorID int64
		req     model.UpdatePostRequest
		partial bool
		wantErr bool
		wantIs  error
	}{
		{"non-author", other.ID, model.UpdatePostRequest{Content: strPtr("x")}, true, true, model.ErrForbidden},
		{"put without content", author.ID, model.UpdatePostRequest{}, false, true, nil},
		{"blank content", author.ID, model.UpdatePostRequest{Content: strPtr("")}, true, true, nil},
		{"patch content", author.ID, model.UpdatePostRequest{Content: strPtr("final")}, true, false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated, err := posts.Update(ctx, tt.actorID, post.ID, &tt.req, tt.partial)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
					t.Errorf("error = %v, want %v", err, tt.wantIs)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if updated.Content != *tt.req.Content {
				t.Errorf("content = %q, want %q", updated.Content, *tt.req.Content)
			}
		})
	}

	if err := posts.Delete(ctx, other.ID, post.ID); !errors.Is(err, model.ErrForbidden) {
		t.Errorf("Delete() by non-author error = %v, want ErrForbidden", err)
	}
	if err := posts.Delete(ctx, author.ID, post.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := posts.Get(ctx, post.ID); !errors.Is(err, model.ErrPostNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrPostNotFound", err)
	}
}

func TestPostService_UserListings(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore()
	author := createUser(t, store, "author")
	posts, _ := newPostService(store)
	createPost(t, posts, author.ID, "one")
	createPost(t, posts, author.ID, "two")

	byAuthor, err := posts.ByAuthor(ctx, author.ID)
	if err != nil {
		t.Fatalf("ByAuthor() error = %v", err)
	}
	if len(byAuthor) != 2 || byAuthor[0].Content != "two" {
		t.Errorf("byAuthor = %+v, want newest-first", byAuthor)
	}

	if _, err := posts.LikedBy(ctx, 777); !errors.Is(err, model.ErrUserNotFound) {
		t.Errorf("LikedBy() for missing user error = %v, want ErrUserNotFound", err)
	}
}

func TestPostService_Pagination(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore()
	u := createUser(t, store, "u")
	posts, _ := newPostService(store)

	empty, count, err := posts.List(ctx, model.DefaultPage())
	if err != nil || count != 0 || len(empty) != 0 {
		t.Fatalf("empty first page = (%v, %d, %v), want no error", empty, count, err)
	}

	for i := 0; i < 3; i++ {
		createPost(t, posts, u.ID, "p")
	}

	page2, count, err := posts.List(ctx, model.Page{Number: 2, Size: 2})
	if err != nil {
		t.Fatalf("page 2 error = %v", err)
	}
	if count != 3 || len(page2) != 1 {
		t.Errorf("page 2 = %d items of %d, want 1 of 3", len(page2), count)
	}

	if _, _, err := posts.List(ctx, model.Page{Number: 3, Size: 2}); !errors.Is(err, model.ErrInvalidPage) {
		t.Errorf("page 3 error = %v, want ErrInvalidPage", err)
	}
}
