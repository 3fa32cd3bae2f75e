package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/inkwell-cms/inkwell_api/dto"
	"github.com/inkwell-cms/inkwell_api/shared"
)

type AuthHandler struct {
	authSvc AuthServiceInterface
}

func NewAuthHandler(authSvc AuthServiceInterface) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// @Summary Register a new user
// @Description Create a new user account with email verification
// @Tags auth
// @Accept json
// @Produce json
// @Param registerRequest body dto.RegisterRequest true "Registration details"
// @Success 201 {object} shared.Response{data=dto.RegisterResponse}
// @Router /api/v1/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}

	resp, err := h.authSvc.Register(req, clientIP(c), c.Get("User-Agent"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "User registered successfully", resp)
}

// @Summary Login
// @Description Authenticate and receive an access/refresh token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param loginRequest body dto.LoginRequest true "Login credentials"
// @Success 200 {object} shared.Response{data=dto.LoginResponse}
// @Router /api/v1/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}

	resp, err := h.authSvc.Login(req, clientIP(c), c.Get("User-Agent"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Login successful", resp)
}

// @Summary Refresh access token
// @Description Rotate the refresh token and mint a new access token
// @Tags auth
// @Accept json
// @Produce json
// @Param refreshRequest body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} shared.Response{data=dto.LoginResponse}
// @Router /api/v1/refresh [post]
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var req dto.RefreshTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}

	resp, err := h.authSvc.RefreshToken(req, clientIP(c), c.Get("User-Agent"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Token refreshed successfully", resp)
}

// @Summary Logout
// @Description Revoke the presented refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Security Bearer
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	userID, _ := c.Locals(shared.UserID).(string)

	var req dto.RefreshTokenRequest
	_ = c.BodyParser(&req)

	if err := h.authSvc.Logout(userID, req.RefreshToken, clientIP(c), c.Get("User-Agent")); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Logged out successfully", nil)
}

// @Summary Logout from all devices
// @Description Revoke every refresh token the user holds
// @Tags auth
// @Accept json
// @Produce json
// @Security Bearer
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/logout-all [post]
func (h *AuthHandler) LogoutAll(c *fiber.Ctx) error {
	userID, _ := c.Locals(shared.UserID).(string)

	if err := h.authSvc.LogoutAllDevices(userID, clientIP(c), c.Get("User-Agent")); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Logged out from all devices successfully", nil)
}

// @Summary Verify email
// @Description Verify user email with 6-digit verification code
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.VerifyEmailRequest true "Verification code and email"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/verify-email [post]
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	var req dto.VerifyEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}

	if err := h.authSvc.VerifyEmail(req); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Email verified successfully", nil)
}

// @Summary Resend verification email
// @Description Send a new verification email, subject to the per-address rate limit
// @Tags auth
// @Accept json
// @Produce json
// @Param resendRequest body dto.ResendVerificationRequest true "Email address"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/resend-verification [post]
func (h *AuthHandler) ResendVerification(c *fiber.Ctx) error {
	var req dto.ResendVerificationRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}

	if err := h.authSvc.ResendVerificationEmail(req); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Verification email sent", nil)
}

// @Summary Request a password reset
// @Description Email a one-time reset code; responds 200 whether or not the address is registered
// @Tags auth
// @Accept json
// @Produce json
// @Param forgotRequest body dto.ForgotPasswordRequest true "Email address"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}

	if err := h.authSvc.ForgotPassword(req, clientIP(c), c.Get("User-Agent")); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "If the address is registered, a reset code has been sent", nil)
}

// @Summary Reset password
// @Description Set a new password using a one-time reset code; revokes all sessions
// @Tags auth
// @Accept json
// @Produce json
// @Param resetRequest body dto.ResetPasswordRequest true "Reset code and new password"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/reset-password [post]
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}

	if err := h.authSvc.ResetPassword(req, clientIP(c), c.Get("User-Agent")); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Password reset successfully", nil)
}

// @Summary Change password
// @Description Change password for the authenticated user; revokes all sessions
// @Tags auth
// @Accept json
// @Produce json
// @Security Bearer
// @Param changeRequest body dto.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/change-password [post]
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	userID, _ := c.Locals(shared.UserID).(string)

	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}

	if err := h.authSvc.ChangePassword(userID, req); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Password changed successfully", nil)
}

// @Summary Lockout status
// @Description Report failed attempt count and remaining lockout for an email
// @Tags auth
// @Produce json
// @Param email query string true "Email address"
// @Success 200 {object} shared.Response{data=dto.LockoutStatusResponse}
// @Router /api/v1/lockout-status [get]
func (h *AuthHandler) LockoutStatus(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		return shared.NewBadRequestError(nil, "email query parameter is required")
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", h.authSvc.GetLockoutStatus(email))
}
