package models

import (
	"fmt"
	"sort"
	"strings"
)

// Role is a closed enumeration of account roles.
type Role uint8

const (
	RoleUser Role = iota + 1
	RoleModerator
	RoleAdmin
)

var roleNames = map[Role]string{
	RoleUser:      "user",
	RoleModerator: "moderator",
	RoleAdmin:     "admin",
}

// AllRoles lists every known role in declaration order.
var AllRoles = []Role{RoleUser, RoleModerator, RoleAdmin}

// DefaultRole is applied when an account is created without roles.
const DefaultRole = RoleUser

func (r Role) String() string {
	if n, ok := roleNames[r]; ok {
		return n
	}
	return fmt.Sprintf("role(%d)", uint8(r))
}

// ParseRole maps a role name to its Role. Matching is case-insensitive.
func ParseRole(s string) (Role, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for r, n := range roleNames {
		if n == name {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

// RoleSet is a set of roles stored as a bit mask.
type RoleSet uint8

// NewRoleSet builds a set from the given roles. Unknown roles are ignored.
func NewRoleSet(roles ...Role) RoleSet {
	var s RoleSet
	for _, r := range roles {
		if _, ok := roleNames[r]; ok {
			s |= 1 << (r - 1)
		}
	}
	return s
}

// ParseRoleSet parses role names into a set. Any unknown name is an error.
func ParseRoleSet(names []string) (RoleSet, error) {
	var s RoleSet
	for _, n := range names {
		r, err := ParseRole(n)
		if err != nil {
			return 0, err
		}
		s = s.With(r)
	}
	return s, nil
}

func (s RoleSet) Has(r Role) bool {
	return s&NewRoleSet(r) != 0
}

func (s RoleSet) With(r Role) RoleSet {
	return s | NewRoleSet(r)
}

func (s RoleSet) IsEmpty() bool { return s == 0 }

// Intersects reports whether s and o share at least one role.
func (s RoleSet) Intersects(o RoleSet) bool { return s&o != 0 }

// Roles returns the members of s in declaration order.
func (s RoleSet) Roles() []Role {
	out := make([]Role, 0, len(AllRoles))
	for _, r := range AllRoles {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

// Strings returns the sorted role names of s.
func (s RoleSet) Strings() []string {
	roles := s.Roles()
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = r.String()
	}
	sort.Strings(out)
	return out
}

func (s RoleSet) String() string {
	return "{" + strings.Join(s.Strings(), ",") + "}"
}
