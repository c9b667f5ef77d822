package model

import (
	"fmt"
	"strings"
)

// Role is the access level held by an identity. Roles are totally ordered:
// Operator < SiteManager < PM < Admin. RoleUnknown ranks below every real
// role and never satisfies a requirement.
type Role uint8

const (
	RoleUnknown Role = iota
	RoleOperator
	RoleSiteManager
	RolePM
	RoleAdmin
)

var roleNames = map[Role]string{
	RoleOperator:    "Operator",
	RoleSiteManager: "SiteManager",
	RolePM:          "PM",
	RoleAdmin:       "Admin",
}

// Roles lists every assignable role in ascending order.
func Roles() []Role {
	return []Role{RoleOperator, RoleSiteManager, RolePM, RoleAdmin}
}

func (r Role) String() string {
	if n, ok := roleNames[r]; ok {
		return n
	}
	return "Unknown"
}

// Rank is the position of r in the hierarchy; 0 for unknown roles.
func (r Role) Rank() int {
	if _, ok := roleNames[r]; !ok {
		return 0
	}
	return int(r)
}

// Satisfies reports whether r is at least min.
func (r Role) Satisfies(min Role) bool {
	rank := r.Rank()
	return rank > 0 && rank >= min.Rank()
}

// ParseRole maps a stored or submitted role name to a Role. Matching is
// case-insensitive; anything unrecognised yields RoleUnknown.
func ParseRole(s string) Role {
	s = strings.TrimSpace(s)
	for r, n := range roleNames {
		if strings.EqualFold(n, s) {
			return r
		}
	}
	return RoleUnknown
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	parsed := ParseRole(string(b))
	if parsed == RoleUnknown {
		return fmt.Errorf("unknown role %q", string(b))
	}
	*r = parsed
	return nil
}
