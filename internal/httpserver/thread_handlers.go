package httpserver

import (
	"net/http"

	"seniorweb/internal/domain"
	"seniorweb/internal/service"
)

type chatsResponse struct {
	Chats []*domain.Thread `json:"chats"`
}

// @Summary      List conversation threads
// @Description  One entry per counterpart, newest activity first. Mutual matches without messages appear as placeholders.
// @Tags         chats
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  chatsResponse
// @Router       /chats [get]
func handleListChats(threadSvc *service.ThreadService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		threads, err := threadSvc.ListThreads(r.Context(), CurrentUser(r).ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, chatsResponse{Chats: threads})
	}
}
