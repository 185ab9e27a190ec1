package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"lms/internal/config"
	"lms/internal/middleware"
	"lms/internal/usecase"
)

// /chat のHTTP
type ChatHandler struct {
	uc *usecase.ChatUsecase
}

// DI
func NewChatHandler(uc *usecase.ChatUsecase) *ChatHandler {
	return &ChatHandler{uc: uc}
}

type chatRequest struct {
	CourseID  string `json:"courseId"`
	LectureID string `json:"lectureId"`
	Message   string `json:"message"`
}

func (h *ChatHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/chat")
	g.Use(middleware.AuthJWT(cfg))

	g.POST("", h.chat)
	g.GET("/history/:courseId", h.history)
	g.DELETE("/history/:courseId", h.clearHistory)
}

func (h *ChatHandler) chat(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Send(c.Request().Context(), userID, usecase.SendChatInput{
		CourseID:  req.CourseID,
		LectureID: req.LectureID,
		Message:   req.Message,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *ChatHandler) history(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.History(c.Request().Context(), userID, c.Param("courseId"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *ChatHandler) clearHistory(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.ClearHistory(c.Request().Context(), userID, c.Param("courseId")); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "chat history cleared"})
}
