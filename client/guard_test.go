package client

import (
	"testing"

	"github.com/shulehub/shule/core/user"
)

func TestResolveRoute(t *testing.T) {
	tests := []struct {
		name string
		path string
		want Route
	}{
		{"root lands on login", "/", routes[PathLogin]},
		{"empty path lands on login", "", routes[PathLogin]},
		{"login", "/login", routes[PathLogin]},
		{"admin dashboard", "/admin", routes[PathAdminDashboard]},
		{"teacher dashboard", "/teacher", routes[PathTeacherDashboard]},
		{"student dashboard", "/student", routes[PathStudentDashboard]},
		{"unknown path lands on unauthorized", "/secrets", routes[PathUnauthorized]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveRoute(tt.path); got != tt.want {
				t.Errorf("ResolveRoute(%q) = %+v; want %+v", tt.path, got, tt.want)
			}
		})
	}
}

func TestDecide(t *testing.T) {
	anon := Snapshot{State: StateAnonymous}
	hydrating := Snapshot{State: StateHydrating}
	student := Snapshot{State: StateAuthenticated, User: user.PublicUser{ID: "u1", Role: user.RoleStudent}}
	teacher := Snapshot{State: StateAuthenticated, User: user.PublicUser{ID: "u2", Role: user.RoleTeacher}}
	admin := Snapshot{State: StateAuthenticated, User: user.PublicUser{ID: "u3", Role: user.RoleAdmin}}

	tests := []struct {
		name         string
		snap         Snapshot
		requiredRole string
		want         Decision
	}{
		{"anonymous on open route", anon, "", RedirectToLogin},
		{"anonymous on admin route", anon, user.RoleAdmin, RedirectToLogin},
		{"hydrating fails closed", hydrating, user.RoleStudent, RedirectToLogin},
		{"student on student route", student, user.RoleStudent, Allow},
		{"student on admin route", student, user.RoleAdmin, RedirectToUnauthorized},
		{"student on teacher route", student, user.RoleTeacher, RedirectToUnauthorized},
		{"teacher on teacher route", teacher, user.RoleTeacher, Allow},
		{"teacher on admin route", teacher, user.RoleAdmin, RedirectToUnauthorized},
		{"admin on admin route", admin, user.RoleAdmin, Allow},
		{"admin on student route", admin, user.RoleStudent, RedirectToUnauthorized},
		{"any authenticated user on unrestricted route", teacher, "", Allow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.snap, tt.requiredRole); got != tt.want {
				t.Errorf("Decide() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestDecide_isPure(t *testing.T) {
	snap := Snapshot{State: StateAnonymous}
	for i := 0; i < 3; i++ {
		if got := Decide(snap, user.RoleAdmin); got != RedirectToLogin {
			t.Fatalf("Decide() call %d = %v; want %v", i, got, RedirectToLogin)
		}
	}
}

func TestDashboardPath(t *testing.T) {
	tests := []struct {
		role string
		want string
	}{
		{user.RoleAdmin, PathAdminDashboard},
		{user.RoleTeacher, PathTeacherDashboard},
		{user.RoleStudent, PathStudentDashboard},
		{"", PathLogin},
	}
	for _, tt := range tests {
		if got := DashboardPath(tt.role); got != tt.want {
			t.Errorf("DashboardPath(%q) = %q; want %q", tt.role, got, tt.want)
		}
	}
}
