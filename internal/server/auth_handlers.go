package server

import (
	"time"

	"inkwell/internal/middleware"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

type signupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Signup handles POST /api/auth/signup
// @Summary User signup
// @Description Register an unverified account and email a verification link
// @Tags auth
// @Accept json
// @Produce json
// @Param request body signupRequest true "Signup request"
// @Success 201 {object} models.Envelope{data=UserSummary}
// @Failure 400 {object} models.Envelope
// @Router /auth/signup [post]
func (s *Server) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	user, err := s.accounts.Register(c.UserContext(), service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return fail(c, err)
	}
	return respondCreated(c, userSummary(user), "Account created. Check your email to verify your address.")
}

// Login handles POST /api/auth/login
// @Summary User login
// @Description Authenticate a verified account and return an access/refresh token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Login credentials"
// @Success 200 {object} models.Envelope{data=object{tokens=auth.TokenPair,user=UserSummary}}
// @Failure 401 {object} models.Envelope
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	res, err := s.accounts.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return respondOK(c, fiber.Map{
		"tokens": res.Tokens,
		"user":   userSummary(res.User),
	}, "Login successful")
}

// RefreshToken handles POST /api/auth/token/refresh
// @Summary Refresh access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{refresh=string} true "Refresh token"
// @Success 200 {object} models.Envelope{data=object{access=string,access_expires_at=string}}
// @Failure 401 {object} models.Envelope
// @Router /auth/token/refresh [post]
func (s *Server) RefreshToken(c *fiber.Ctx) error {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}

	access, exp, err := s.accounts.Refresh(c.UserContext(), req.Refresh)
	if err != nil {
		return fail(c, err)
	}
	return respondOK(c, fiber.Map{"access": access, "access_expires_at": exp}, "Token refreshed")
}

// Logout handles POST /api/auth/logout
// @Summary Logout
// @Description Revoke the current access token and, when given, the refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{refresh=string} false "Refresh token to revoke"
// @Success 200 {object} models.Envelope
// @Failure 401 {object} models.Envelope
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return fail(c, err)
		}
	}

	jti, _ := c.Locals(middleware.LocalTokenJTI).(string)
	exp, _ := c.Locals(middleware.LocalTokenExp).(time.Time)
	if err := s.accounts.Logout(c.UserContext(), middleware.UserID(c), jti, exp, req.Refresh); err != nil {
		return fail(c, err)
	}
	return respondOK(c, nil, "Logged out")
}

// RequestVerification handles POST /api/auth/email-verify/request
// @Summary Resend verification email
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string} true "Account email"
// @Success 200 {object} models.Envelope
// @Failure 404 {object} models.Envelope
// @Failure 409 {object} models.Envelope
// @Router /auth/email-verify/request [post]
func (s *Server) RequestVerification(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	if err := s.accounts.SendVerification(c.UserContext(), req.Email); err != nil {
		return fail(c, err)
	}
	return respondOK(c, nil, "Verification email sent")
}

// VerifyEmail handles POST /api/auth/email-verify
// @Summary Verify email address
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{uid=string,token=string} true "Verification link parameters"
// @Success 200 {object} models.Envelope
// @Failure 400 {object} models.Envelope
// @Failure 409 {object} models.Envelope
// @Router /auth/email-verify [post]
func (s *Server) VerifyEmail(c *fiber.Ctx) error {
	var req struct {
		UID   string `json:"uid"`
		Token string `json:"token"`
	}
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	if err := s.accounts.Verify(c.UserContext(), req.UID, req.Token); err != nil {
		return fail(c, err)
	}
	return respondOK(c, nil, "Email address verified")
}

// RequestPasswordReset handles POST /api/auth/password-reset/request
// @Summary Request password reset
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string} true "Account email"
// @Success 200 {object} models.Envelope
// @Failure 403 {object} models.Envelope
// @Failure 404 {object} models.Envelope
// @Router /auth/password-reset/request [post]
func (s *Server) RequestPasswordReset(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	if err := s.accounts.RequestPasswordReset(c.UserContext(), req.Email); err != nil {
		return fail(c, err)
	}
	return respondOK(c, nil, "Password reset email sent")
}

// ResetPassword handles POST /api/auth/password-reset
// @Summary Reset password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{uid=string,token=string,password=string} true "Reset link parameters and new password"
// @Success 200 {object} models.Envelope
// @Failure 400 {object} models.Envelope
// @Router /auth/password-reset [post]
func (s *Server) ResetPassword(c *fiber.Ctx) error {
	var req struct {
		UID      string `json:"uid"`
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	if err := s.accounts.ResetPassword(c.UserContext(), req.UID, req.Token, req.Password); err != nil {
		return fail(c, err)
	}
	return respondOK(c, nil, "Password has been reset")
}
