package handlers

import (
	"net/http"

	"github.com/nkiryanov/gym/internal/handlers/render"
	"github.com/nkiryanov/gym/internal/logger"
)

func handleListUsers(s userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		users, err := s.List(r.Context(), principal(r))
		if err != nil {
			renderError(w, r, l, err)
			return
		}

		render.JSON(w, mapSlice(users, newUserResponse))
	})
}

func handleGetUser(s userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := s.Get(r.Context(), principal(r), r.PathValue("username"))
		if err != nil {
			renderError(w, r, l, err)
			return
		}

		render.JSON(w, newUserResponse(u))
	})
}

func handleChangePassword(s userService, l logger.Logger) http.Handler {
	type request struct {
		Username    string `json:"username" validate:"required,notblank"`
		OldPassword string `json:"oldPassword" validate:"required"`
		NewPassword string `json:"newPassword" validate:"required,notblank,min=6"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		err = s.ChangePassword(r.Context(), principal(r), data.Username, data.OldPassword, data.NewPassword)
		if err != nil {
			renderError(w, r, l, err)
			return
		}

		render.JSON(w, messageResponse{Message: "Password changed"})
	})
}

func handleDeleteUser(s userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := s.Delete(r.Context(), principal(r), r.PathValue("username")); err != nil {
			renderError(w, r, l, err)
			return
		}

		render.NoContent(w)
	})
}
