package application

import (
	"fmt"

	"internApply/internal/errcode"
)

// Role 是可申请的岗位，取值封闭。
type Role string

const (
	RoleMarketResearch Role = "Market Research"
	RoleUIUX           Role = "UI/UX Design"
	RoleFrontend       Role = "Frontend Developer"
)

// DefaultRole 是新表单预选的岗位。
const DefaultRole = RoleMarketResearch

// Roles 按页面展示顺序返回全部岗位。
func Roles() []Role {
	return []Role{RoleMarketResearch, RoleUIUX, RoleFrontend}
}

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleMarketResearch, RoleUIUX, RoleFrontend:
		return true
	}
	return false
}

// ParseRole 校验并返回岗位。
func ParseRole(raw string) (Role, error) {
	r := Role(raw)
	if !r.Valid() {
		return "", errcode.New(errcode.InvalidRole, fmt.Sprintf("unknown role %q", raw))
	}
	return r, nil
}
