package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	. "github.com/shulehub/shule/apps/api/echo"
	"github.com/shulehub/shule/core/user"
	testutil "github.com/shulehub/shule/tests"
)

func Test_register(t *testing.T) {
	testutil.ResetDB(t, db)

	testutil.CreateUser(t, usrRepo, "Taken", "taken@test.cd", "lol", user.RoleStudent)

	tests := []httpTest{
		{
			name:     "register a teacher",
			body:     marchallObj(t, user.NewUser{Name: "Jane Awesome", Email: "jane@test.cd", Password: "Str0ngPwd!", Role: user.RoleTeacher, Subject: "Physics"}),
			wantCode: http.StatusCreated,
			wantData: []byte(`{"success":true}`),
		},
		{
			name:     "role defaults to student",
			body:     marchallObj(t, user.NewUser{Name: "Sam Student", Email: "sam@test.cd", Password: "Str0ngPwd!"}),
			wantCode: http.StatusCreated,
			wantData: []byte(`{"success":true}`),
		},
		{
			name:     "duplicate email",
			body:     marchallObj(t, user.NewUser{Name: "Impostor", Email: "taken@test.cd", Password: "lol"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Message: "a user with this email already exists"}),
		},
		{
			name:     "duplicate email different case",
			body:     marchallObj(t, user.NewUser{Name: "Impostor", Email: "TAKEN@Test.CD", Password: "lol"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Message: "a user with this email already exists"}),
		},
		{
			name:     "unknown role rejected",
			body:     marchallObj(t, user.NewUser{Name: "Hax", Email: "hax@test.cd", Password: "lol", Role: "Principal"}),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "missing fields rejected",
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/auth/register", tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}
			if rec.Code != tt.wantCode {
				t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
			}
			var resp httpErr
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshalling response: %v", err)
			}
			if resp.Success {
				t.Errorf("failed! success = true; want false. body = %v", rec.Body.String())
			}
		})
	}
}

func Test_login(t *testing.T) {
	testutil.ResetDB(t, db)

	usr := testutil.CreateUser(t, usrRepo, "Jane Awesome", "jane@test.cd", "Str0ngPwd!", user.RoleTeacher)

	t.Run("valid credentials", func(t *testing.T) {
		body := marchallObj(t, LoginRequest{Email: "jane@test.cd", Password: "Str0ngPwd!"})
		req, rec := newRequest(http.MethodPost, "/api/auth/login", body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v. body = %v", rec.Code, http.StatusOK, rec.Body.String())
		}
		var resp LoginResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if !resp.Success {
			t.Error("failed! success = false; want true")
		}
		if resp.Token == "" {
			t.Error("failed! token is empty")
		}
		if resp.User.ID != usr.ID || resp.User.Role != user.RoleTeacher {
			t.Errorf("failed! user = %+v; want id %v role %v", resp.User, usr.ID, user.RoleTeacher)
		}

		claims, err := ValidateToken(conf, resp.Token)
		if err != nil {
			t.Fatalf("ValidateToken() failed on fresh token: %v", err)
		}
		if claims.Subject != usr.ID || claims.Role != user.RoleTeacher {
			t.Errorf("claims = %+v; want sub %v role %v", claims, usr.ID, user.RoleTeacher)
		}
	})

	// wrong password and unknown email must be indistinguishable
	wantInvalid := marchallObj(t, httpErr{Message: "Invalid Credentials"})
	tests := []httpTest{
		{
			name:     "wrong password",
			body:     marchallObj(t, LoginRequest{Email: "jane@test.cd", Password: "nope"}),
			wantCode: http.StatusBadRequest,
			wantData: wantInvalid,
		},
		{
			name:     "unknown email",
			body:     marchallObj(t, LoginRequest{Email: "nobody@test.cd", Password: "Str0ngPwd!"}),
			wantCode: http.StatusBadRequest,
			wantData: wantInvalid,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/auth/login", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_tokenValidation(t *testing.T) {
	testutil.ResetDB(t, db)

	usr := testutil.CreateUser(t, usrRepo, "Sam Student", "sam@test.cd", "lol", user.RoleStudent)

	expiredToken := func() string {
		claims := GetUserClaims(conf, usr)
		claims.ExpiresAt = time.Now().Add(-time.Hour).Unix()
		claims.IssuedAt = time.Now().Add(-25 * time.Hour).Unix()
		token, err := GenerateToken(conf, claims)
		if err != nil {
			t.Fatalf("generating expired token: %v", err)
		}
		return token
	}()

	forgedToken := func() string {
		claims := GetUserClaims(conf, usr)
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("not-the-secret"))
		if err != nil {
			t.Fatalf("generating forged token: %v", err)
		}
		return token
	}()

	tests := []httpTest{
		{
			name:     "no token",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Message: "token missing"}),
		},
		{
			name:     "non-bearer scheme",
			extra:    "Basic bG9sOmxvbA==",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Message: "token malformed"}),
		},
		{
			name:     "garbage token",
			token:    "not.a.token",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Message: "token malformed"}),
		},
		{
			name:     "expired token",
			token:    expiredToken,
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Message: "token expired"}),
		},
		{
			name:     "forged signature",
			token:    forgedToken,
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Message: "token signature invalid"}),
		},
		{
			name:     "valid token",
			token:    getToken(t, conf, usr),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/api/dashboard/student", tt.token)
			if header, ok := tt.extra.(string); ok {
				req.Header.Set("Authorization", header)
			}
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
