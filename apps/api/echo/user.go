package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shulehub/shule/core"
	"github.com/shulehub/shule/core/user"
)

type userApi struct {
	conf       *core.Config
	svc        user.ServiceInterface
	validate   *validator.Validate
	translator ut.Translator
}

func registerUserAPI(
	g *echo.Group,
	conf *core.Config,
	jwt echo.MiddlewareFunc,
	svc user.ServiceInterface,
	validate *validator.Validate,
	translator ut.Translator,
) {
	api := userApi{
		conf:       conf,
		svc:        svc,
		validate:   validate,
		translator: translator,
	}

	// un-authed endpoints
	// TODO: rate limit `/auth/login`
	ag := g.Group("/auth")
	ag.POST("/register", api.register)
	ag.POST("/login", api.login)

	// admin endpoints
	ug := g.Group("/users", jwt, roleMiddleware(user.RoleAdmin))
	ug.GET("", api.query)
	ug.DELETE("/:id", api.destroy)

	// dashboards; every role gated behind token validation
	dg := g.Group("/dashboard", jwt)
	dg.GET("/admin", api.adminDashboard, roleMiddleware(user.RoleAdmin))
	dg.GET("/teacher", api.teacherDashboard, roleMiddleware(user.RoleTeacher))
	dg.GET("/student", api.studentDashboard, roleMiddleware(user.RoleStudent))
}

// Handlers

func (api *userApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if _, err := api.svc.Register(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "registering user")
	}

	return ctx.JSON(http.StatusCreated, statusResponse{Success: true})
}

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		if errors.Cause(err) == user.ErrInvalidCredentials {
			return errInvalidCredentials
		}
		return errors.Wrap(err, "authenticating")
	}

	token, err := GenerateToken(api.conf, GetUserClaims(api.conf, usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{
		Success: true,
		Token:   token,
		User:    usr.Public(),
	})
}

func (api *userApi) query(ctx echo.Context) error {
	users, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying users")
	}

	pubUsers := make([]user.PublicUser, 0, len(users))
	for _, usr := range users {
		pubUsers = append(pubUsers, usr.Public())
	}
	return ctx.JSON(http.StatusOK, pubUsers)
}

func (api *userApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	// Say No to Suicide! ctxUser cannot delete themselves
	if ctx.Param("id") == claims.Subject {
		return errHttpForbidden
	}

	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting user")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *userApi) adminDashboard(ctx echo.Context) error {
	users, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying users")
	}

	counts := make(map[string]int, len(user.AllRoles))
	for _, role := range user.AllRoles {
		counts[role] = 0
	}
	for _, usr := range users {
		counts[usr.Role]++
	}
	return ctx.JSON(http.StatusOK, AdminDashboardResponse{
		Success:    true,
		TotalUsers: len(users),
		RoleCounts: counts,
	})
}

func (api *userApi) teacherDashboard(ctx echo.Context) error {
	usr, err := api.getContextUser(ctx)
	if err != nil {
		return err
	}

	resp := TeacherDashboardResponse{Success: true, Name: usr.Name}
	if usr.Teacher != nil {
		resp.Subject = usr.Teacher.Subject
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *userApi) studentDashboard(ctx echo.Context) error {
	usr, err := api.getContextUser(ctx)
	if err != nil {
		return err
	}

	resp := StudentDashboardResponse{Success: true, Name: usr.Name}
	if usr.Student != nil {
		resp.Course = usr.Student.Course
		resp.Fees = usr.Student.Fees
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *userApi) getContextUser(ctx echo.Context) (user.User, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return user.User{}, errors.Wrap(err, "getting context claims")
	}
	usr, err := api.svc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, errUnauthorized
		}
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}
	return usr, nil
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Success bool            `json:"success"`
		Token   string          `json:"token"`
		User    user.PublicUser `json:"user"`
	}

	statusResponse struct {
		Success bool   `json:"success"`
		Message string `json:"message,omitempty"`
	}

	AdminDashboardResponse struct {
		Success    bool           `json:"success"`
		TotalUsers int            `json:"totalUsers"`
		RoleCounts map[string]int `json:"roleCounts"`
	}

	TeacherDashboardResponse struct {
		Success bool   `json:"success"`
		Name    string `json:"name"`
		Subject string `json:"subject,omitempty"`
	}

	StudentDashboardResponse struct {
		Success bool   `json:"success"`
		Name    string `json:"name"`
		Course  string `json:"course,omitempty"`
		Fees    string `json:"fees,omitempty"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}
