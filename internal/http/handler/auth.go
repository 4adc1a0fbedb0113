package handler

import (
	"github.com/gofiber/fiber/v2"

	"docvault/internal/http/middleware"
	"docvault/internal/service"
	"docvault/internal/validation"
)

// register godoc
// @Summary Register a new identity
// @Tags auth
// @Accept json
// @Produce json
// @Param body body registerRequest true "credentials"
// @Success 201 {object} map[string]any
// @Failure 400 {object} errorPayload
// @Router /auth/register [post]
func (h *Handler) register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := validation.Struct(req); err != nil {
		return writeServiceError(c, h.logger, err)
	}

	res, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return writeServiceError(c, h.logger, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"token":   res.Token,
		"user":    newUserView(res.User),
	})
}

// login godoc
// @Summary Exchange credentials for a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "credentials"
// @Success 200 {object} map[string]any
// @Failure 400 {object} errorPayload
// @Router /auth/login [post]
func (h *Handler) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := validation.Struct(req); err != nil {
		return writeServiceError(c, h.logger, err)
	}

	res, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return writeServiceError(c, h.logger, err)
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   res.Token,
		"user":    newUserView(res.User),
	})
}

// me godoc
// @Summary Current identity
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} userView
// @Failure 401 {object} errorPayload
// @Router /auth/me [get]
func (h *Handler) me(c *fiber.Ctx) error {
	u, err := h.auth.FindUser(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return writeServiceError(c, h.logger, err)
	}
	return c.JSON(newUserView(u))
}
