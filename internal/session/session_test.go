package session

import (
	"errors"
	"testing"
	"time"

	"smartpark/ledger-service/internal/models"
	"smartpark/ledger-service/internal/store"
)

type fakeDirectory struct {
	users    []models.User
	branches []models.Branch
}

func (f *fakeDirectory) UserByUsername(username string) (models.User, bool) {
	for _, user := range f.users {
		if user.Username == username {
			return user, true
		}
	}
	return models.User{}, false
}

func (f *fakeDirectory) UserByID(userID string) (models.User, bool) {
	for _, user := range f.users {
		if user.UserID == userID {
			return user, true
		}
	}
	return models.User{}, false
}

func (f *fakeDirectory) Branches() []models.Branch {
	return f.branches
}

func newDirectory() *fakeDirectory {
	return &fakeDirectory{
		users: []models.User{
			{UserID: "u1", Username: "admin", Role: models.RoleAdmin},
			{UserID: "u2", Username: "staff", Role: models.RoleStaff, BranchID: "b2"},
		},
		branches: []models.Branch{{BranchID: "b1"}, {BranchID: "b2"}},
	}
}

func TestLoginSelectsInitialBranch(t *testing.T) {
	dir := newDirectory()
	tests := []struct {
		username string
		state    State
		branchID string
	}{
		{username: "admin", state: LoggedInAdmin, branchID: "b1"},
		{username: "staff", state: LoggedInStaff, branchID: "b2"},
	}
	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			var s Session
			if err := s.Login(dir, tt.username); err != nil {
				t.Fatalf("login: %v", err)
			}
			if s.State() != tt.state {
				t.Fatalf("expected %s, got %s", tt.state, s.State())
			}
			view, err := s.Resolve(dir)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if view.BranchID != tt.branchID || view.Scope.BranchID != tt.branchID || view.Scope.Aggregate {
				t.Fatalf("unexpected view %+v", view)
			}
		})
	}
}

func TestLoginUnknownUser(t *testing.T) {
	var s Session
	if err := s.Login(newDirectory(), "ghost"); !errors.Is(err, store.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if s.State() != LoggedOut {
		t.Fatalf("expected logged out")
	}
}

func TestSwitchBranch(t *testing.T) {
	dir := newDirectory()

	var staff Session
	_ = staff.Login(dir, "staff")
	if err := staff.SwitchBranch(dir, "b1"); !errors.Is(err, store.ErrAccessDenied) {
		t.Fatalf("expected staff switch denied, got %v", err)
	}
	view, _ := staff.Resolve(dir)
	if view.BranchID != "b2" {
		t.Fatalf("staff must stay on own branch, got %s", view.BranchID)
	}

	var admin Session
	_ = admin.Login(dir, "admin")
	if err := admin.SwitchBranch(dir, "b9"); !errors.Is(err, store.ErrBranchNotFound) {
		t.Fatalf("expected unknown branch, got %v", err)
	}
	if err := admin.SwitchBranch(dir, models.AggregateBranchID); err != nil {
		t.Fatalf("switch to aggregate: %v", err)
	}
	view, _ = admin.Resolve(dir)
	if !view.Scope.Aggregate || view.BranchID != models.AggregateBranchID {
		t.Fatalf("expected aggregate view, got %+v", view)
	}
	if err := admin.SwitchBranch(dir, "b2"); err != nil {
		t.Fatalf("switch to b2: %v", err)
	}
	view, _ = admin.Resolve(dir)
	if view.Scope.Aggregate || view.BranchID != "b2" {
		t.Fatalf("expected b2 view, got %+v", view)
	}

	admin.Logout()
	if admin.State() != LoggedOut {
		t.Fatalf("expected logged out")
	}
	if _, err := admin.Resolve(dir); !errors.Is(err, store.ErrSessionNotFound) {
		t.Fatalf("expected no session after logout, got %v", err)
	}
}

func TestResolveAfterBranchRemoval(t *testing.T) {
	dir := newDirectory()
	var admin, staff Session
	_ = admin.Login(dir, "admin")
	_ = admin.SwitchBranch(dir, "b2")
	_ = staff.Login(dir, "staff")

	dir.branches = []models.Branch{{BranchID: "b1"}}

	view, err := admin.Resolve(dir)
	if err != nil {
		t.Fatalf("resolve admin: %v", err)
	}
	if view.BranchID != "b1" || !view.Resolved {
		t.Fatalf("expected admin fallback to b1, got %+v", view)
	}

	view, err = staff.Resolve(dir)
	if err != nil {
		t.Fatalf("resolve staff: %v", err)
	}
	if view.Resolved || view.Scope.BranchID != "" {
		t.Fatalf("expected unresolved staff scope, got %+v", view)
	}
}

func TestManagerLifecycle(t *testing.T) {
	dir := newDirectory()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	m := NewManager(dir, Options{TTL: time.Hour, Now: func() time.Time { return now }})

	if _, _, err := m.Login("ghost"); !errors.Is(err, store.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	id, view, err := m.Login("admin")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if id == "" || view.BranchID != "b1" {
		t.Fatalf("unexpected login result %q %+v", id, view)
	}

	view, err = m.SwitchBranch(id, "b2")
	if err != nil || view.BranchID != "b2" {
		t.Fatalf("switch: %v %+v", err, view)
	}

	now = now.Add(50 * time.Minute)
	if _, err := m.Resolve(id); err != nil {
		t.Fatalf("expected session alive: %v", err)
	}
	now = now.Add(50 * time.Minute)
	if _, err := m.Resolve(id); err != nil {
		t.Fatalf("expected sliding expiry to keep session alive: %v", err)
	}

	other, _, _ := m.Login("staff")
	now = now.Add(2 * time.Hour)
	if removed := m.Sweep(); removed != 2 {
		t.Fatalf("expected 2 expired sessions, got %d", removed)
	}
	if _, err := m.Resolve(other); !errors.Is(err, store.ErrSessionNotFound) {
		t.Fatalf("expected expired session, got %v", err)
	}
}

func TestManagerDropsRemovedUser(t *testing.T) {
	dir := newDirectory()
	m := NewManager(dir, Options{})
	id, _, err := m.Login("staff")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	dir.users = dir.users[:1]
	if _, err := m.Resolve(id); !errors.Is(err, store.ErrSessionNotFound) {
		t.Fatalf("expected session ended for removed user, got %v", err)
	}
	if m.Len() != 0 {
		t.Fatalf("expected session removed")
	}
	m.Logout("unknown")
}

func TestShortIDTruncatesSessionIDs(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{id: "3f1c9a2e-7b44-4c1d-9e0a-5d2f8b6c1a90", want: "3f1c9a2e"},
		{id: "abc", want: "abc"},
		{id: "", want: ""},
	}
	for _, tt := range tests {
		if got := shortID(tt.id); got != tt.want {
			t.Fatalf("shortID(%q): expected %q, got %q", tt.id, tt.want, got)
		}
	}
}
