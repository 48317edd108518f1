package models

import "strings"

const (
	RoleManager = "manager"
	RoleCashier = "cashier"
	RoleKitchen = "kitchen"
)

// Staff is a member allowed to sign in at the terminal. PINHash is a bcrypt hash.
type Staff struct {
	Name    string `json:"name" yaml:"name"`
	Role    string `json:"role" yaml:"role"`
	PINHash string `json:"-" yaml:"pin_hash"`
}

func ValidRole(role string) bool {
	switch strings.ToLower(role) {
	case RoleManager, RoleCashier, RoleKitchen:
		return true
	}
	return false
}
