/*
Package roles reduces the role assignments stored for a user to a single
effective role, and derives the publishing capability from it.

Assignments live in the user_role table as plain tags. A user may hold any
number of them; the highest one wins. Nothing here caches a result: callers
resolve from a freshly fetched set whenever they need a decision.
*/
package roles

import (
	"errors"
	"fmt"

	"github.com/sciclub/clubsite/src/oops"
)

// Ordered from least to most privileged, so roles compare with < and >.
type Role int

const (
	None Role = iota
	Member
	Editor
	Admin
)

const (
	TagMember = "member"
	TagEditor = "editor"
	TagAdmin  = "admin"
)

// All assignable roles, highest first.
var Assignable = []Role{Admin, Editor, Member}

var ErrUnknownRole = errors.New("unknown role tag")

// Converts a stored tag to a Role. Anything other than the three known tags
// is a data-integrity problem and returns ErrUnknownRole.
func Parse(tag string) (Role, error) {
	switch tag {
	case TagAdmin:
		return Admin, nil
	case TagEditor:
		return Editor, nil
	case TagMember:
		return Member, nil
	}
	return None, oops.New(ErrUnknownRole, "role tag %q", tag)
}

/*
Returns the highest role among tags, or None for an empty collection. Order
and duplicates do not matter. A single malformed tag fails the whole
resolution instead of being skipped, since skipping it could silently lower
or raise someone's privileges.
*/
func Resolve(tags []string) (Role, error) {
	effective := None
	for _, tag := range tags {
		role, err := Parse(tag)
		if err != nil {
			return None, err
		}
		if role > effective {
			effective = role
		}
	}
	return effective, nil
}

// Whether the role may create, edit and delete content.
func (r Role) CanPublish() bool {
	switch r {
	case Admin, Editor:
		return true
	case Member, None:
		return false
	}
	panic(invalidRole(r))
}

// Whether the role may manage other users' role assignments.
func (r Role) CanManageRoles() bool {
	switch r {
	case Admin:
		return true
	case Editor, Member, None:
		return false
	}
	panic(invalidRole(r))
}

// The stored tag for the role. None has no tag.
func (r Role) Tag() string {
	switch r {
	case Admin:
		return TagAdmin
	case Editor:
		return TagEditor
	case Member:
		return TagMember
	case None:
		return ""
	}
	panic(invalidRole(r))
}

func (r Role) String() string {
	switch r {
	case Admin:
		return "Admin"
	case Editor:
		return "Editor"
	case Member:
		return "Member"
	case None:
		return "None"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

func invalidRole(r Role) error {
	return oops.New(ErrUnknownRole, "invalid role value %d", int(r))
}
