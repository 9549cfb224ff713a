package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	mw "github.com/localserve/localserve-api/internal/http/middleware"
)

// Router wires the full API surface.
func (h *Handlers) Router(authn *mw.Authenticator) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", h.SignUp)
			r.Post("/signin", h.SignIn)
			r.Post("/signout", h.SignOut)
			r.Get("/verify-email/{token}", h.VerifyEmail)
			r.Post("/verify-phone", h.VerifyPhone)
			r.Post("/forgot-password", h.ForgotPassword)
			r.Post("/reset-password/{token}", h.ResetPassword)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(authn.RequireAuth)

			r.Get("/me", h.GetMe)
			r.Patch("/me", h.UpdateMe)
			r.Delete("/me", h.DeleteMe)
			r.Post("/me/change-password", h.ChangePassword)

			r.Group(func(r chi.Router) {
				r.Use(mw.RequireAdmin)
				r.Get("/", h.ListAccounts)
				r.Get("/{id}", h.GetAccount)
				r.Patch("/{id}", h.UpdateAccount)
				r.Delete("/{id}", h.DeleteAccount)
				r.Patch("/{id}/role", h.UpdateAccountRole)
			})
		})

		r.Route("/services", func(r chi.Router) {
			r.Use(authn.RequireAuth)

			r.Get("/", h.ListServices)
			r.Get("/search", h.SearchServices)
			r.Get("/{id}", h.GetService)

			r.Group(func(r chi.Router) {
				r.Use(mw.RequireAdmin)
				r.Post("/", h.CreateService)
				r.Patch("/{id}", h.UpdateService)
				r.Delete("/{id}", h.DeleteService)
				r.Patch("/{id}/activate", h.ActivateService)
				r.Patch("/{id}/deactivate", h.DeactivateService)
				r.Post("/seed", h.SeedServices)
			})
		})
	})

	return r
}
