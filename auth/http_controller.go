package auth

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// LoginFailedMessage is the single user-facing message for both unknown
// accounts and bad passwords, so responses do not leak which one happened.
const LoginFailedMessage = "El usuario o la contraseña no son válidos"

// AuthController exposes the account endpoints over fiber.
type AuthController struct {
	Logger        Logger
	Auther        *Auther
	CreateAccount *CreateAccountHandler
	Repo          RepositoryManager
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing Auther in auth controller...")
	}

	if c.CreateAccount == nil {
		panic("Missing CreateAccountHandler in auth controller...")
	}

	return c
}

func (a *AuthController) WithLogger(logger Logger) *AuthController {
	if logger != nil {
		a.Logger = logger
	}
	return a
}

// RegisterAuthRoutes mounts the account endpoints under /api/v1.
func RegisterAuthRoutes(app *fiber.App, opts ...AuthControllerOption) *AuthController {
	controller := NewAuthController(opts...)

	v1 := app.Group("/api/v1")
	v1.Post("/signup", controller.SignupPost).Name("signup.post")
	v1.Post("/login", controller.LoginPost).Name("login.post")
	v1.Patch("/users/:id/active", controller.ToggleActivePatch).Name("users.toggle-active")

	return controller
}

// SignupRequest payload
type SignupRequest struct {
	FirstName string `form:"firstname" json:"firstname"`
	LastName  string `form:"lastname" json:"lastname"`
	Email     string `form:"email" json:"email"`
	Password  string `form:"password" json:"password"`
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required.Error("El email es obligatorio"),
		),
		validation.Field(
			&r.Password,
			validation.Required.Error("La contraseña es obligatoria"),
		),
	)
}

func (a *AuthController) SignupPost(c *fiber.Ctx) error {
	payload := new(SignupRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Info("signup bind error", "error", err)
		return respondFieldErrors(c, http.StatusBadRequest, map[string]string{
			"body": "El cuerpo de la petición no es válido",
		})
	}

	user, err := a.CreateAccount.Execute(c.Context(), CreateAccountMessage{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
		Password:  payload.Password,
	})
	if err != nil {
		return a.respondError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"user": user,
	})
}

func (a *AuthController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Info("login bind error", "error", err)
		return respondFieldErrors(c, http.StatusBadRequest, map[string]string{
			"body": "El cuerpo de la petición no es válido",
		})
	}

	if err := payload.Validate(); err != nil {
		if fields, ok := err.(validation.Errors); ok {
			return respondFieldErrors(c, http.StatusBadRequest, validationMessages(fields))
		}
		return a.respondError(c, err)
	}

	user, token, err := a.Auther.Login(c.Context(), payload.Email, payload.Password)
	if err != nil {
		if goerrors.Is(err, ErrAccountNotFound) || goerrors.Is(err, ErrMismatchedHashAndPassword) {
			return respondFieldErrors(c, http.StatusBadRequest, map[string]string{
				"login": LoginFailedMessage,
			})
		}
		return a.respondError(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"user":  user,
		"token": token,
	})
}

func (a *AuthController) ToggleActivePatch(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondFieldErrors(c, http.StatusBadRequest, map[string]string{
			"id": "El identificador no es válido",
		})
	}

	user, err := a.Repo.Users().GetByUUID(c.Context(), id)
	if err != nil {
		if goerrors.Is(err, ErrAccountNotFound) {
			return respondFieldErrors(c, http.StatusNotFound, map[string]string{
				"user": "El usuario no fue encontrado",
			})
		}
		return a.respondError(c, err)
	}

	user, err = a.Repo.Users().ToggleActive(c.Context(), user)
	if err != nil {
		return a.respondError(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"user": user,
	})
}

// respondError translates structured errors into API responses. Validation
// problems keep their field map; anything infrastructure-shaped collapses to
// a generic 500 with the detail logged, never exposed.
func (a *AuthController) respondError(c *fiber.Ctx, err error) error {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		if fields := richErr.ValidationMap(); len(fields) > 0 {
			return respondFieldErrors(c, http.StatusBadRequest, fields)
		}

		switch richErr.Category {
		case goerrors.CategoryValidation, goerrors.CategoryBadInput:
			return respondFieldErrors(c, http.StatusBadRequest, map[string]string{
				"request": richErr.Message,
			})
		case goerrors.CategoryNotFound:
			return respondFieldErrors(c, http.StatusNotFound, map[string]string{
				"request": richErr.Message,
			})
		}
	}

	a.Logger.Error("unhandled error", "error", err)
	return respondFieldErrors(c, http.StatusInternalServerError, map[string]string{
		"server": "Internal Server Error",
	})
}

func respondFieldErrors(c *fiber.Ctx, status int, fields map[string]string) error {
	return c.Status(status).JSON(fiber.Map{
		"errors": fields,
	})
}

func validationMessages(errs validation.Errors) map[string]string {
	out := make(map[string]string, len(errs))
	for field, err := range errs {
		if err != nil {
			out[field] = err.Error()
		}
	}
	return out
}
