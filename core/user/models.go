package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/shulehub/shule/core"
)

// Roles. Every account carries exactly one; it is set at registration and
// never changes afterwards.
const (
	RoleAdmin   = "Admin"
	RoleTeacher = "Teacher"
	RoleStudent = "Student"
)

var AllRoles = []string{RoleAdmin, RoleTeacher, RoleStudent}

// Fee statuses (students only).
const (
	FeesPending = "Pending"
	FeesPaid    = "Paid"
)

type (
	// StudentProfile holds the role-conditional attributes of a Student.
	StudentProfile struct {
		Course string `json:"course,omitempty"`
		Fees   string `json:"fees,omitempty"`
	}

	// TeacherProfile holds the role-conditional attributes of a Teacher.
	TeacherProfile struct {
		Subject string `json:"subject,omitempty"`
	}

	// User is the durable identity record: a common envelope plus the
	// profile variant matching its role. Admins carry no extra attributes.
	User struct {
		ID           string          `json:"id"`
		Name         string          `json:"name"`
		Email        string          `json:"email"`
		Role         string          `json:"role"`
		PasswordHash []byte          `json:"-"`
		CreatedAt    time.Time       `json:"created_at"` // UTC
		Student      *StudentProfile `json:"student,omitempty"`
		Teacher      *TeacherProfile `json:"teacher,omitempty"`
	}

	// PublicUser is the secret-free projection of a User returned to clients
	// after login.
	PublicUser struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Email  string `json:"email"`
		Role   string `json:"role"`
		Course string `json:"course,omitempty"`
	}
)

// SetPassword derives a salted bcrypt hash of pwd. cost is floored at
// bcrypt.DefaultCost so a misconfigured deployment can only raise the effort.
func (u *User) SetPassword(pwd string, cost int) error {
	if cost < bcrypt.DefaultCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), cost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u *User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u *User) IsStudent() bool { return u.Role == RoleStudent }

// Public returns the client-facing projection of u.
func (u User) Public() PublicUser {
	pub := PublicUser{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
	if u.Student != nil {
		pub.Course = u.Student.Course
	}
	return pub
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"omitempty,oneof=Admin Teacher Student"`
	Course   string `json:"course"`
	Subject  string `json:"subject"`
	Fees     string `json:"fees" validate:"omitempty,oneof=Pending Paid"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	if nu.Role == "" {
		nu.Role = RoleStudent
	}
	return validate.Struct(nu)
}
