package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/MangKong-coder/rest-api/domain"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 5

type signupRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Name     string `json:"name" form:"name"`
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func emailTaken(email string) domain.FieldError {
	return domain.FieldError{Field: "email", Value: email, Message: "E-Mail address already exists!"}
}

func (h *Handler) Signup(c echo.Context) error {
	if h.Environment != "dev" && !h.EnableSignup {
		return domain.Authorization("Sign up has been disabled.")
	}

	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	user := domain.User{
		ID:     uuid.NewString(),
		Email:  domain.NormalizeEmail(req.Email),
		Name:   strings.TrimSpace(req.Name),
		Status: domain.DefaultStatus,
	}
	ctx := c.Request().Context()

	var fields []domain.FieldError
	if err := user.ValidateEmail(); err != nil {
		fields = append(fields, domain.FieldError{Field: "email", Value: req.Email, Message: "Please enter a valid email."})
	} else if _, err := h.Users.UserByEmail(ctx, user.Email); err == nil {
		fields = append(fields, emailTaken(user.Email))
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if len(strings.TrimSpace(req.Password)) < minPasswordLength {
		fields = append(fields, domain.FieldError{Field: "password", Message: "Password must be at least 5 characters long."})
	}
	if user.Name == "" {
		fields = append(fields, domain.FieldError{Field: "name", Value: req.Name, Message: "Name must not be empty."})
	}
	if len(fields) > 0 {
		return domain.Validation("Validation failed.", fields...)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashedPassword)
	if err := h.Users.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return domain.Validation("Validation failed.", emailTaken(user.Email))
		}
		return err
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"message": "User created!",
		"userId":  user.ID,
	})
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	user, err := h.Users.UserByEmail(c.Request().Context(), domain.NormalizeEmail(req.Email))
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Authentication("A user with this email could not be found.")
	}
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return domain.Authentication("Wrong password!")
	}

	token, err := newToken(user, h.JWTSecret, h.TokenTTL)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{
		"token":  token,
		"userId": user.ID,
	})
}
