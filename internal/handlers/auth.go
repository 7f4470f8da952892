package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/nkiryanov/gym/internal/handlers/render"
	"github.com/nkiryanov/gym/internal/logger"
	"github.com/nkiryanov/gym/internal/models"
)

type credentialsRequest struct {
	Username string `json:"username" validate:"required,notblank,max=100"`
	Password string `json:"password" validate:"required,notblank"`
}

type authResponse struct {
	Username     string    `json:"username"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

func newAuthResponse(a models.Authentication) authResponse {
	return authResponse{
		Username:     a.Username,
		AccessToken:  a.Access.Value,
		RefreshToken: a.Refresh.Value,
		ExpiresAt:    a.Access.ExpiresAt,
	}
}

type credentialsFunc func(ctx context.Context, username string, password string) (models.Authentication, error)

// Shared by signup, login and authenticate: body with credentials in, token pair out
func handleCredentials(fn credentialsFunc, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[credentialsRequest](w, r)
		if err != nil {
			return
		}

		auth, err := fn(r.Context(), data.Username, data.Password)
		if err != nil {
			renderError(w, r, l, err)
			return
		}

		render.JSON(w, newAuthResponse(auth))
	})
}

func handleSignup(s authService, l logger.Logger) http.Handler {
	return handleCredentials(s.Signup, l)
}

func handleLogin(s authService, l logger.Logger) http.Handler {
	return handleCredentials(s.Login, l)
}

func handleAuthenticate(s authService, l logger.Logger) http.Handler {
	return handleCredentials(s.Authenticate, l)
}

func handleRefresh(s authService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth, err := s.Refresh(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			renderError(w, r, l, err)
			return
		}

		render.JSON(w, newAuthResponse(auth))
	})
}

func handleLogout(s authService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := s.Logout(r.Context(), r.Header.Get("Authorization")); err != nil {
			renderError(w, r, l, err)
			return
		}

		render.JSON(w, messageResponse{Message: "Logout successful"})
	})
}
