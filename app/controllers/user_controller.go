package controllers

import (
	"github.com/shashiranjanraj/propelyu/app/services"
	"github.com/shashiranjanraj/propelyu/pkg/ctx"
)

type registerForm struct {
	Username        string `form:"username"         validate:"required,max=100"`
	Email           string `form:"email"            validate:"required,email"`
	Password        string `form:"password"         validate:"required"`
	ConfirmPassword string `form:"confirm_password" validate:"required"`
	Role            string `form:"role"`
}

type loginForm struct {
	Email    string `form:"email"    validate:"required,email"`
	Password string `form:"password" validate:"required,min=8"`
}

type UserController struct {
	users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

// Register handles POST /users/register.
func (h *UserController) Register(c *ctx.Context) {
	var in registerForm
	if !c.BindForm(&in) {
		return
	}

	user, err := h.users.Register(c.Context(), services.RegisterInput{
		Username:        in.Username,
		Email:           in.Email,
		Password:        in.Password,
		ConfirmPassword: in.ConfirmPassword,
		Role:            in.Role,
	})
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created("User registered successfully!", user)
}

// Login handles POST /users/login.
func (h *UserController) Login(c *ctx.Context) {
	var in loginForm
	if !c.BindForm(&in) {
		return
	}

	token, err := h.users.Login(c.Context(), in.Email, in.Password)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}
