package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/shulehub/shule/core/user"
	testutil "github.com/shulehub/shule/tests"
)

func Test_userQuery(t *testing.T) {
	testutil.ResetDB(t, db)

	admin := testutil.CreateUser(t, usrRepo, "Ada Admin", "ada@test.cd", "lol", user.RoleAdmin)
	teacher := testutil.CreateUser(t, usrRepo, "Jane Teacher", "jane@test.cd", "lol", user.RoleTeacher)
	student := testutil.CreateUser(t, usrRepo, "Sam Student", "sam@test.cd", "lol", user.RoleStudent)

	wantForbidden := marchallObj(t, httpErr{Message: "permission denied"})

	tests := []httpTest{
		{name: "anonymous is rejected", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Message: "token missing"})},
		{name: "teacher is rejected", token: getToken(t, conf, teacher), wantCode: http.StatusForbidden, wantData: wantForbidden},
		{name: "student is rejected", token: getToken(t, conf, student), wantCode: http.StatusForbidden, wantData: wantForbidden},
		{name: "admin lists all users", token: getToken(t, conf, admin), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/api/users", tt.token)
			app.ServeHTTP(rec, req)

			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}
			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v. body = %v", rec.Code, tt.wantCode, rec.Body.String())
			}
			var users []user.PublicUser
			if err := json.Unmarshal(rec.Body.Bytes(), &users); err != nil {
				t.Fatalf("unmarshalling response: %v", err)
			}
			if len(users) != 3 {
				t.Errorf("failed! got %d users; want 3", len(users))
			}
			for _, usr := range users {
				if usr.ID == student.ID && usr.Course != "Biology" {
					t.Errorf("student course = %q; want Biology", usr.Course)
				}
			}
		})
	}
}

func Test_userDestroy(t *testing.T) {
	testutil.ResetDB(t, db)

	admin := testutil.CreateUser(t, usrRepo, "Ada Admin", "ada@test.cd", "lol", user.RoleAdmin)
	student := testutil.CreateUser(t, usrRepo, "Sam Student", "sam@test.cd", "lol", user.RoleStudent)
	adminToken := getToken(t, conf, admin)

	tests := []httpTest{
		{
			name:     "student cannot delete",
			path:     "/api/users/" + admin.ID,
			token:    getToken(t, conf, student),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Message: "permission denied"}),
		},
		{
			name:     "admin cannot delete themselves",
			path:     "/api/users/" + admin.ID,
			token:    adminToken,
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Message: "permission denied"}),
		},
		{
			name:     "admin deletes a user",
			path:     "/api/users/" + student.ID,
			token:    adminToken,
			wantCode: http.StatusNoContent,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodDelete, tt.path, tt.token)
			app.ServeHTTP(rec, req)

			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}
			if rec.Code != tt.wantCode {
				t.Errorf("failed! code = %v; wantCode %v. body = %v", rec.Code, tt.wantCode, rec.Body.String())
			}
		})
	}
}

func Test_dashboards(t *testing.T) {
	testutil.ResetDB(t, db)

	admin := testutil.CreateUser(t, usrRepo, "Ada Admin", "ada@test.cd", "lol", user.RoleAdmin)
	teacher := testutil.CreateUser(t, usrRepo, "Jane Teacher", "jane@test.cd", "lol", user.RoleTeacher)
	student := testutil.CreateUser(t, usrRepo, "Sam Student", "sam@test.cd", "lol", user.RoleStudent)

	adminToken := getToken(t, conf, admin)
	teacherToken := getToken(t, conf, teacher)
	studentToken := getToken(t, conf, student)

	wantForbidden := marchallObj(t, httpErr{Message: "permission denied"})

	tests := []httpTest{
		{
			name:     "admin dashboard counts roles",
			path:     "/api/dashboard/admin",
			token:    adminToken,
			wantCode: http.StatusOK,
			wantData: []byte(`{"success":true,"totalUsers":3,"roleCounts":{"Admin":1,"Teacher":1,"Student":1}}`),
		},
		{
			name:     "teacher dashboard shows subject",
			path:     "/api/dashboard/teacher",
			token:    teacherToken,
			wantCode: http.StatusOK,
			wantData: []byte(`{"success":true,"name":"Jane Teacher","subject":"Chemistry"}`),
		},
		{
			name:     "student dashboard shows course and fees",
			path:     "/api/dashboard/student",
			token:    studentToken,
			wantCode: http.StatusOK,
			wantData: []byte(`{"success":true,"name":"Sam Student","course":"Biology","fees":"Pending"}`),
		},
		{name: "student cannot open admin dashboard", path: "/api/dashboard/admin", token: studentToken, wantCode: http.StatusForbidden, wantData: wantForbidden},
		{name: "teacher cannot open admin dashboard", path: "/api/dashboard/admin", token: teacherToken, wantCode: http.StatusForbidden, wantData: wantForbidden},
		{name: "admin cannot open student dashboard", path: "/api/dashboard/student", token: adminToken, wantCode: http.StatusForbidden, wantData: wantForbidden},
		{name: "student cannot open teacher dashboard", path: "/api/dashboard/teacher", token: studentToken, wantCode: http.StatusForbidden, wantData: wantForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
