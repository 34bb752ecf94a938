package handlers

import (
	"net/http"
	"strings"

	"github.com/kasperbn/packlist/internal/auth"
	"github.com/kasperbn/packlist/internal/httpx"
	"github.com/kasperbn/packlist/internal/view"
)

type AuthHandler struct {
	Creds auth.Credentials
}

func NewAuthHandler(creds auth.Credentials) *AuthHandler { return &AuthHandler{Creds: creds} }

func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"Msg":  r.URL.Query().Get("msg"),
		"Next": r.URL.Query().Get("next"),
	}
	if err := view.Render(w, r, "login.html", data); err != nil {
		http.Error(w, "render: "+err.Error(), http.StatusInternalServerError)
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	user := r.FormValue("username")
	pass := r.FormValue("password")
	if !h.Creds.Verify(user, pass) {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusUnauthorized, "bad_credentials", nil)
			return
		}
		redirectMsg(w, r, "/login", "Wrong username or password")
		return
	}
	auth.CreateSession(w, user)
	next := r.FormValue("next")
	if next == "" || !strings.HasPrefix(next, "/") {
		next = "/"
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"operator": user})
		return
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	redirectMsg(w, r, "/", "Logged out")
}
