package auth

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Role is the closed set of caller roles, ordered by privilege:
// Reader < Reviewer < Approver < Admin.
type Role string

const (
	RoleReader   Role = "reader"
	RoleReviewer Role = "reviewer"
	RoleApprover Role = "approver"
	RoleAdmin    Role = "admin"
)

// Action names a permission checked against the embedded role matrix.
type Action string

const (
	ActionRead    Action = "read"
	ActionSubmit  Action = "submit"
	ActionApprove Action = "approve"
	ActionHistory Action = "history" // view historical versions
	ActionDelete  Action = "delete"
	ActionManage  Action = "manage"
)

var roleOrder = map[Role]int{
	RoleReader:   0,
	RoleReviewer: 1,
	RoleApprover: 2,
	RoleAdmin:    3,
}

// Normalize maps an arbitrary role string onto the closed set, defaulting
// to reader for anything unknown.
func Normalize(role string) Role {
	switch Role(role) {
	case RoleReader, RoleReviewer, RoleApprover, RoleAdmin:
		return Role(role)
	default:
		return RoleReader
	}
}

// AtLeast reports whether the role provides at least the privilege of min.
func (r Role) AtLeast(min Role) bool {
	return roleOrder[r] >= roleOrder[min]
}

// RoleRegistry holds the action matrix loaded from the embedded YAML.
type RoleRegistry struct {
	actions map[Role]map[Action]bool
}

type roleMatrixFile struct {
	Roles map[string][]string `yaml:"roles"`
}

// NewRoleRegistry loads the embedded role/action matrix.
func NewRoleRegistry() (*RoleRegistry, error) {
	data, err := configFiles.ReadFile("config/roles.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read role matrix: %w", err)
	}

	var file roleMatrixFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal role matrix: %w", err)
	}

	registry := &RoleRegistry{actions: make(map[Role]map[Action]bool)}
	for roleName, actions := range file.Roles {
		role := Normalize(roleName)
		registry.actions[role] = make(map[Action]bool, len(actions))
		for _, action := range actions {
			registry.actions[role][Action(action)] = true
		}
	}

	return registry, nil
}

// Can reports whether the role matrix grants the action. Admin passes
// every check regardless of the matrix contents.
func (r *RoleRegistry) Can(role Role, action Action) bool {
	if role == RoleAdmin {
		return true
	}
	return r.actions[role][action]
}
