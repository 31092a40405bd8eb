package httpserver

import (
	"net/http"

	"seniorweb/internal/domain"
	"seniorweb/internal/service"
)

type usersResponse struct {
	Users []*domain.User `json:"users"`
}

// @Summary      Discover users
// @Description  Users the caller has not liked yet, newest first.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  usersResponse
// @Router       /users [get]
func handleDiscoverUsers(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := userSvc.Discover(r.Context(), CurrentUser(r).ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, usersResponse{Users: users})
	}
}
