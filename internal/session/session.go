package session

import (
	"smartpark/ledger-service/internal/ledger"
	"smartpark/ledger-service/internal/models"
	"smartpark/ledger-service/internal/store"
)

type State int

const (
	LoggedOut State = iota
	LoggedInStaff
	LoggedInAdmin
)

func (s State) String() string {
	switch s {
	case LoggedInStaff:
		return "staff"
	case LoggedInAdmin:
		return "admin"
	default:
		return "logged_out"
	}
}

// Directory is the read side of the user and branch registries.
type Directory interface {
	UserByUsername(username string) (models.User, bool)
	UserByID(userID string) (models.User, bool)
	Branches() []models.Branch
}

// Session tracks who is logged in and which branch is projected. Staff are
// pinned to their own branch; admins may pick any branch or the aggregate.
type Session struct {
	userID    string
	state     State
	branchID  string
	aggregate bool
}

// View is a resolved session: the current user and the data scope.
type View struct {
	User     models.User  `json:"user"`
	BranchID string       `json:"branch_id"`
	Scope    ledger.Scope `json:"-"`
	// Resolved is false when no concrete branch or aggregate is selectable.
	Resolved bool         `json:"resolved"`
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) Login(dir Directory, username string) error {
	user, ok := dir.UserByUsername(username)
	if !ok {
		return store.ErrInvalidCredentials
	}
	s.userID = user.UserID
	s.aggregate = false
	if user.IsAdmin() {
		s.state = LoggedInAdmin
		s.branchID = ""
		if branches := dir.Branches(); len(branches) > 0 {
			s.branchID = branches[0].BranchID
		}
		return nil
	}
	s.state = LoggedInStaff
	s.branchID = user.BranchID
	return nil
}

func (s *Session) Logout() {
	*s = Session{}
}

// SwitchBranch selects a branch, or the aggregate view for
// models.AggregateBranchID. Only admins may switch.
func (s *Session) SwitchBranch(dir Directory, branchID string) error {
	if s.state == LoggedOut {
		return store.ErrSessionNotFound
	}
	if s.state != LoggedInAdmin {
		return store.ErrAccessDenied
	}
	if branchID == models.AggregateBranchID {
		s.aggregate = true
		s.branchID = ""
		return nil
	}
	if !branchExists(dir.Branches(), branchID) {
		return store.ErrBranchNotFound
	}
	s.aggregate = false
	s.branchID = branchID
	return nil
}

// Resolve reloads the user and settles the scope against the current
// registry. An admin whose branch was removed falls back to the first
// branch. A removed user ends the session.
func (s *Session) Resolve(dir Directory) (View, error) {
	if s.state == LoggedOut {
		return View{}, store.ErrSessionNotFound
	}
	user, ok := dir.UserByID(s.userID)
	if !ok {
		s.Logout()
		return View{}, store.ErrSessionNotFound
	}
	if user.IsAdmin() {
		s.state = LoggedInAdmin
	} else {
		s.state = LoggedInStaff
		s.aggregate = false
		s.branchID = user.BranchID
	}

	view := View{User: user}
	if s.aggregate {
		view.BranchID = models.AggregateBranchID
		view.Scope = ledger.AggregateScope()
		view.Resolved = true
		return view, nil
	}

	branches := dir.Branches()
	if !branchExists(branches, s.branchID) {
		if s.state != LoggedInAdmin || len(branches) == 0 {
			view.Scope = ledger.BranchScope("")
			return view, nil
		}
		s.branchID = branches[0].BranchID
	}
	view.BranchID = s.branchID
	view.Scope = ledger.BranchScope(s.branchID)
	view.Resolved = true
	return view, nil
}

func branchExists(branches []models.Branch, branchID string) bool {
	if branchID == "" {
		return false
	}
	for _, branch := range branches {
		if branch.BranchID == branchID {
			return true
		}
	}
	return false
}
