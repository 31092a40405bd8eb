package httpserver

import (
	"net/http"

	"seniorweb/internal/service"
)

type likeRequest struct {
	LikedID string `json:"likedId"`
}

type matchesResponse struct {
	Matches []*service.MatchedUser `json:"matches"`
}

// @Summary      Like a user
// @Description  Records a like. A reciprocal like makes the pair mutual and seeds their conversation.
// @Tags         matches
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body likeRequest true "Liked user"
// @Success      200  {object}  service.MatchResult
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /matches [post]
func handleLike(matchSvc *service.MatchService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentUser := CurrentUser(r)
		var req likeRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		res, err := matchSvc.Like(r.Context(), currentUser.ID, req.LikedID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// @Summary      List mutual matches
// @Tags         matches
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  matchesResponse
// @Router       /matches [get]
func handleListMatches(matchSvc *service.MatchService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := matchSvc.ListMutual(r.Context(), CurrentUser(r).ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, matchesResponse{Matches: matches})
	}
}
