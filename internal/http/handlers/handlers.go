package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/localserve/localserve-api/internal/domain"
	"github.com/localserve/localserve-api/internal/service"
	"github.com/localserve/localserve-api/pkg/config"
)

type Handlers struct {
	auth     service.AuthService
	accounts service.AccountService
	catalog  service.CatalogService
	config   *config.Config
}

func New(
	auth service.AuthService,
	accounts service.AccountService,
	catalog service.CatalogService,
	config *config.Config,
) *Handlers {
	return &Handlers{
		auth:     auth,
		accounts: accounts,
		catalog:  catalog,
		config:   config,
	}
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.NewValidationError("", "invalid JSON body")
	}
	return nil
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("id", "must be a positive integer")
	}
	return id, nil
}

func parsePagination(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0

	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	return limit, offset
}
