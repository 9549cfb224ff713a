package handlers

import (
	"net/http"

	"github.com/localserve/localserve-api/internal/domain"
	"github.com/localserve/localserve-api/internal/http/middleware"
	"github.com/localserve/localserve-api/internal/http/response"
)

func (h *Handlers) GetMe(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)
	if claims == nil {
		response.Fail(w, http.StatusUnauthorized, "authentication required")
		return
	}

	info, err := h.accounts.Get(r.Context(), claims.Sub)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, http.StatusOK, "", info)
}

func (h *Handlers) UpdateMe(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)
	if claims == nil {
		response.Fail(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req domain.UpdateAccountRequest
	if err := decode(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	info, err := h.accounts.UpdateProfile(r.Context(), claims.Sub, &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, http.StatusOK, "profile updated successfully", info)
}

func (h *Handlers) DeleteMe(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)
	if claims == nil {
		response.Fail(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.accounts.Delete(r.Context(), claims.Sub); err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, http.StatusOK, "your account has been deleted", nil)
}

// ---------- admin ----------

func (h *Handlers) ListAccounts(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	infos, err := h.accounts.List(r.Context(), limit, offset)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, http.StatusOK, "", map[string]any{
		"count": len(infos),
		"users": infos,
	})
}

func (h *Handlers) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	info, err := h.accounts.Get(r.Context(), id)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, http.StatusOK, "", info)
}

func (h *Handlers) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	var req domain.UpdateAccountRequest
	if err := decode(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	info, err := h.accounts.UpdateProfile(r.Context(), id, &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, http.StatusOK, "user updated successfully", info)
}

func (h *Handlers) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	if err := h.accounts.Delete(r.Context(), id); err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, http.StatusOK, "user deleted successfully", nil)
}

// UpdateAccountRole is the only path that can grant or revoke admin. The
// route is admin-gated, so a caller can never escalate itself.
func (h *Handlers) UpdateAccountRole(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	var req domain.UpdateRoleRequest
	if err := decode(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(w, r, err)
		return
	}

	if err := h.accounts.UpdateRole(r.Context(), id, req.Role); err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, http.StatusOK, "role updated successfully", nil)
}
