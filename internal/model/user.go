package model

import (
	"fmt"
	"strings"
)

// Role is the permission tier returned by the backend for a user.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleKitchen  Role = "KITCHEN"
	RoleCustomer Role = "CUSTOMER"
)

// Roles lists every role the client knows about, in display order.
var Roles = []Role{RoleCustomer, RoleKitchen, RoleAdmin}

// roleAliases maps every spelling the backend (or the registration form) has used onto the enum.
var roleAliases = map[string]Role{
	"admin":       RoleAdmin,
	"gerente":     RoleAdmin,
	"kitchen":     RoleKitchen,
	"funcionario": RoleKitchen,
	"cozinha":     RoleKitchen,
	"customer":    RoleCustomer,
	"cliente":     RoleCustomer,
}

// ParseRole normalizes a role string to the closed enumeration.
func ParseRole(s string) (Role, error) {
	r, ok := roleAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Label is the Portuguese name shown in the UI.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Gerente"
	case RoleKitchen:
		return "Cozinha"
	case RoleCustomer:
		return "Cliente"
	}
	return string(r)
}

// RoleSet is an explicit allow-set of roles for a protected route.
type RoleSet map[Role]struct{}

// NewRoleSet builds an allow-set from the given roles.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Allows reports whether r is in the set.
func (s RoleSet) Allows(r Role) bool {
	_, ok := s[r]
	return ok
}

// User is the authenticated user held in memory for the lifetime of a session.
type User struct {
	ID       string `json:"id"`
	Nome     string `json:"nome"`
	Email    string `json:"email"`
	Telefone string `json:"telefone"`
	Role     Role   `json:"role"`
}
