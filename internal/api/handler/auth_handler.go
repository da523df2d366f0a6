package handler

import (
	"fmt"
	"net/http"

	"codetrack/internal/app/service"
	"codetrack/internal/common"

	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(as *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/auth/github", h.githubAuth)
	r.Get("/auth/github/callback", h.githubCallback)
}

func (h *AuthHandler) githubAuth(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	authURL, err := h.authService.BeginAuth(r.Context(),
		q.Get("email"), q.Get("sheet_id"), q.Get("group_name"), q.Get("extension_id"))
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

// githubCallback finishes the OAuth round trip. The browser lands here,
// so the outcome is a redirect back into the extension rather than JSON.
func (h *AuthHandler) githubCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	extensionID, err := h.authService.CompleteAuth(r.Context(), q.Get("code"), q.Get("state"))
	if err != nil {
		if extensionID == "" {
			common.RespondWithDomainError(w, err)
			return
		}
		http.Redirect(w, r, extensionPage(extensionID, "error.html"), http.StatusFound)
		return
	}
	http.Redirect(w, r, extensionPage(extensionID, "success.html"), http.StatusFound)
}

func extensionPage(extensionID, page string) string {
	return fmt.Sprintf("chrome-extension://%s/%s", extensionID, page)
}
