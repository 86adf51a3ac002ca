package domain

// Viewer is the identity of the requester, as established by the external
// identity provider. The zero value is an anonymous viewer.
type Viewer struct {
	ID            string
	Username      string
	FirstName     string
	Role          Role
	Authenticated bool
}

// Anonymous is the zero viewer, kept as a named value for readability.
var Anonymous = Viewer{}

// DisplayName returns the viewer's first name, falling back to the username.
func (v Viewer) DisplayName() string {
	if v.FirstName != "" {
		return v.FirstName
	}
	return v.Username
}

// IsAdmin reports whether the viewer holds the admin role.
func (v Viewer) IsAdmin() bool {
	return v.Authenticated && v.Role == RoleAdmin
}

// CanView decides whether a viewer may read a wordbook.
// Rules are evaluated in order, first match wins:
//  1. AI-generated wordbooks are visible to everyone.
//  2. Public wordbooks are visible to everyone.
//  3. Anonymous viewers see nothing else.
//  4. Admins see everything.
//  5. Owners see their own.
//  6. Otherwise hidden.
//
// Callers fetching by ID must surface out-of-scope wordbooks as NotFound,
// never Forbidden, so private collections do not leak their existence.
func CanView(wb *WordBook, viewer Viewer) bool {
	switch {
	case wb.IsAIGenerated:
		return true
	case wb.IsPublic:
		return true
	case !viewer.Authenticated:
		return false
	case viewer.IsAdmin():
		return true
	case wb.OwnerID == viewer.ID:
		return true
	default:
		return false
	}
}

// ScopeFor returns the listing predicate for a viewer. The store applies it
// while iterating, before pagination and counting, so that page sizes and
// count displays never reveal hidden rows.
func ScopeFor(viewer Viewer) func(*WordBook) bool {
	return func(wb *WordBook) bool {
		return CanView(wb, viewer)
	}
}
