package handlers

import (
	"net/http"

	"github.com/localserve/localserve-api/internal/domain"
	"github.com/localserve/localserve-api/internal/http/response"
)

func (h *Handlers) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.catalog.List(r.Context())
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, http.StatusOK, "", map[string]any{
		"count":    len(services),
		"services": services,
	})
}

func (h *Handlers) SearchServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.catalog.Search(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, http.StatusOK, "", map[string]any{
		"count":    len(services),
		"services": services,
	})
}

func (h *Handlers) GetService(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	svc, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, http.StatusOK, "", svc)
}

// ---------- admin ----------

func (h *Handlers) CreateService(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateServiceRequest
	if err := decode(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	svc, err := h.catalog.Create(r.Context(), &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, http.StatusCreated, "service created successfully", svc)
}

func (h *Handlers) UpdateService(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	var req domain.UpdateServiceRequest
	if err := decode(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	svc, err := h.catalog.Update(r.Context(), id, &req)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, http.StatusOK, "service updated successfully", svc)
}

func (h *Handlers) ActivateService(w http.ResponseWriter, r *http.Request) {
	h.setServiceActive(w, r, true, "service activated")
}

func (h *Handlers) DeactivateService(w http.ResponseWriter, r *http.Request) {
	h.setServiceActive(w, r, false, "service deactivated")
}

func (h *Handlers) setServiceActive(w http.ResponseWriter, r *http.Request, active bool, message string) {
	id, err := idParam(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	svc, err := h.catalog.SetActive(r.Context(), id, active)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, http.StatusOK, message, svc)
}

func (h *Handlers) DeleteService(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	if err := h.catalog.Delete(r.Context(), id); err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, http.StatusOK, "service deleted successfully", nil)
}

func (h *Handlers) SeedServices(w http.ResponseWriter, r *http.Request) {
	seeded, err := h.catalog.Seed(r.Context())
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, http.StatusCreated, "default services seeded", map[string]any{
		"seeded": seeded,
	})
}
