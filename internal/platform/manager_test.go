package platform

import (
	"context"
	"errors"
	"testing"
)

type fakeClient struct {
	name  string
	err   error
	calls int
}

func (f *fakeClient) Name() string { return f.name }

func (f *fakeClient) CreatePost(ctx context.Context, text string, mediaIDs []string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "id-" + f.name, nil
}

func TestCrossPostFanOut(t *testing.T) {
	primary := &fakeClient{name: "twitter"}
	a := &fakeClient{name: "telegram"}
	b := &fakeClient{name: "slack"}

	m := NewManager(primary)
	m.AddCrossPost(a)
	m.AddCrossPost(b)

	m.CrossPost(context.Background(), "hello")

	if a.calls != 1 || b.calls != 1 {
		t.Errorf("expected one call per target, got %d/%d", a.calls, b.calls)
	}
	if primary.calls != 0 {
		t.Errorf("cross-post must not hit the primary, got %d calls", primary.calls)
	}
}

func TestCrossPostFailureDoesNotStopOthers(t *testing.T) {
	m := NewManager(&fakeClient{name: "twitter"})
	failing := &fakeClient{name: "discord", err: errors.New("boom")}
	ok := &fakeClient{name: "slack"}
	m.AddCrossPost(failing)
	m.AddCrossPost(ok)

	m.CrossPost(context.Background(), "hello")

	if ok.calls != 1 {
		t.Errorf("expected surviving target to be called, got %d", ok.calls)
	}
}
