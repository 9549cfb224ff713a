package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/localserve/localserve-api/internal/domain"
	"github.com/localserve/localserve-api/internal/http/middleware"
	"github.com/localserve/localserve-api/internal/http/response"
)

// SignUp creates an account and returns the email verification token. No
// bearer token is issued until the email is verified.
func (h *Handlers) SignUp(w http.ResponseWriter, r *http.Request) {
	var req domain.SignUpRequest
	if err := decode(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	result, err := h.auth.SignUp(r.Context(), &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	// The verification token travels out-of-band; surfacing it here is a
	// dev-mode convenience only, same as the reset token below.
	data := map[string]any{"user": result.Account}
	if h.config.Email.DevMode {
		data["verify_token"] = result.VerifyToken
	}

	response.OK(w, http.StatusCreated, "account created, please verify your email", data)
}

func (h *Handlers) SignIn(w http.ResponseWriter, r *http.Request) {
	var req domain.SignInRequest
	if err := decode(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	result, err := h.auth.SignIn(r.Context(), &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	if result.OTPRequired {
		response.OK(w, http.StatusOK, "OTP sent to phone, valid for 60 seconds", map[string]any{
			"otp_required": true,
			"otp":          result.OTP,
		})
		return
	}

	response.OK(w, http.StatusOK, "signed in successfully", map[string]any{
		"token":      result.Token,
		"expires_in": result.ExpiresIn,
		"user":       result.Account,
	})
}

// SignOut is a client-side contract: tokens are stateless, so there is no
// server state to clear.
func (h *Handlers) SignOut(w http.ResponseWriter, r *http.Request) {
	response.OK(w, http.StatusOK, "signed out successfully", nil)
}

func (h *Handlers) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	info, err := h.auth.VerifyEmail(r.Context(), token)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, http.StatusOK, "email verified successfully", map[string]any{
		"user": info,
	})
}

func (h *Handlers) VerifyPhone(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyPhoneRequest
	if err := decode(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	result, err := h.auth.VerifyPhone(r.Context(), &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, http.StatusOK, "phone verified successfully", map[string]any{
		"token":      result.Token,
		"expires_in": result.ExpiresIn,
		"user":       result.Account,
	})
}

func (h *Handlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ForgotPasswordRequest
	if err := decode(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	resetToken, err := h.auth.ForgotPassword(r.Context(), &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	// The reset token travels out-of-band. Exposing it to the HTTP caller
	// is a dev-mode convenience only.
	var data map[string]any
	if h.config.Email.DevMode {
		data = map[string]any{"reset_token": resetToken}
	}

	response.OK(w, http.StatusOK, "password reset token generated", data)
}

func (h *Handlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var req domain.ResetPasswordRequest
	if err := decode(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	result, err := h.auth.ResetPassword(r.Context(), token, &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, http.StatusOK, "password reset successfully", map[string]any{
		"token":      result.Token,
		"expires_in": result.ExpiresIn,
		"user":       result.Account,
	})
}

func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)
	if claims == nil {
		response.Fail(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req domain.ChangePasswordRequest
	if err := decode(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	if err := h.auth.ChangePassword(r.Context(), claims.Sub, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, http.StatusOK, "password changed successfully", nil)
}
