package client

import (
	"fmt"

	"github.com/shulehub/shule/core/user"
)

// Decision is the outcome of a route access check.
type Decision int

const (
	Allow Decision = iota
	RedirectToLogin
	RedirectToUnauthorized
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirect to login"
	case RedirectToUnauthorized:
		return "redirect to unauthorized"
	}
	return fmt.Sprintf("Decision(%d)", int(d))
}

// Known portal paths.
const (
	PathRoot             = "/"
	PathLogin            = "/login"
	PathUnauthorized     = "/unauthorized"
	PathAdminDashboard   = "/admin"
	PathTeacherDashboard = "/teacher"
	PathStudentDashboard = "/student"
)

// Route pairs a path with the role it requires. An empty RequiredRole means
// any authenticated user may enter.
type Route struct {
	Path         string
	RequiredRole string
}

var routes = map[string]Route{
	PathLogin:            {Path: PathLogin},
	PathUnauthorized:     {Path: PathUnauthorized},
	PathAdminDashboard:   {Path: PathAdminDashboard, RequiredRole: user.RoleAdmin},
	PathTeacherDashboard: {Path: PathTeacherDashboard, RequiredRole: user.RoleTeacher},
	PathStudentDashboard: {Path: PathStudentDashboard, RequiredRole: user.RoleStudent},
}

// ResolveRoute maps a requested path to a known Route. The root path lands on
// login; anything unknown lands on unauthorized.
func ResolveRoute(path string) Route {
	if path == PathRoot || path == "" {
		return routes[PathLogin]
	}
	if route, ok := routes[path]; ok {
		return route
	}
	return routes[PathUnauthorized]
}

// Decide checks a session snapshot against a role requirement. It has no side
// effects so callers can evaluate it on every navigation. A store still
// hydrating is treated as unauthenticated; access fails closed.
func Decide(snap Snapshot, requiredRole string) Decision {
	if snap.State != StateAuthenticated {
		return RedirectToLogin
	}
	if requiredRole != "" && snap.User.Role != requiredRole {
		return RedirectToUnauthorized
	}
	return Allow
}

// DashboardPath returns the landing dashboard for a role.
func DashboardPath(role string) string {
	switch role {
	case user.RoleAdmin:
		return PathAdminDashboard
	case user.RoleTeacher:
		return PathTeacherDashboard
	case user.RoleStudent:
		return PathStudentDashboard
	}
	return PathLogin
}
