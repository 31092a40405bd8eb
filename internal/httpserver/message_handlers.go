package httpserver

import (
	"net/http"

	"seniorweb/internal/service"
)

type messageCreateRequest struct {
	ReceiverID string  `json:"receiverId"`
	Content    string  `json:"content"`
	ImageURL   *string `json:"imageUrl"`
	AudioURL   *string `json:"audioUrl"`
	Source     string  `json:"source"`
}

type markReadRequest struct {
	User string `json:"user"`
}

type markReadResponse struct {
	Updated int64 `json:"updated"`
}

// @Summary      Open a conversation
// @Description  Marks the counterpart's messages as read, then returns the history.
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        user query string true "Counterpart user id"
// @Success      200  {object}  service.Conversation
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /messages [get]
func handleOpenConversation(msgSvc *service.MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conv, err := msgSvc.OpenConversation(r.Context(), CurrentUser(r).ID, r.URL.Query().Get("user"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, conv)
	}
}

// @Summary      Send a message
// @Tags         messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body messageCreateRequest true "Message"
// @Success      201  {object}  domain.Message
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /messages [post]
func handleSendMessage(msgSvc *service.MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req messageCreateRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		msg, err := msgSvc.Send(r.Context(), service.SendInput{
			SenderID:   CurrentUser(r).ID,
			ReceiverID: req.ReceiverID,
			Content:    req.Content,
			ImageURL:   req.ImageURL,
			AudioURL:   req.AudioURL,
			Source:     req.Source,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, msg)
	}
}

// @Summary      Mark a conversation read
// @Tags         messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body markReadRequest true "Counterpart"
// @Success      200  {object}  markReadResponse
// @Failure      400  {object}  map[string]string
// @Router       /messages/read [post]
func handleMarkRead(msgSvc *service.MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req markReadRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		n, err := msgSvc.MarkRead(r.Context(), CurrentUser(r).ID, req.User)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, markReadResponse{Updated: n})
	}
}
