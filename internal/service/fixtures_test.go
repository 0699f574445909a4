package service

import (
	"context"
	"testing"

	"socialhub/internal/model"
	"socialhub/internal/queue"
	"socialhub/internal/testutil"
)

// recordingPublisher captures published activity events.
type recordingPublisher struct {
	events []queue.ActivityEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, stream string, event queue.ActivityEvent) (string, error) {
	p.events = append(p.events, event)
	return "1-0", nil
}

func (p *recordingPublisher) types() []string {
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func createUser(t *testing.T, store *testutil.Store, username string) *model.User {
	t.Helper()
	u := &model.User{Username: username, Email: username + "@example.com"}
	if err := store.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func profileOf(t *testing.T, store *testutil.Store, userID int64) *model.Profile {
	t.Helper()
	p, err := store.Profiles().GetByUserID(context.Background(), userID)
	if err != nil {
		t.Fatalf("profile of %d: %v", userID, err)
	}
	return p
}

func strPtr(s string) *string { return &s }
