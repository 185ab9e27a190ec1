package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"lms/internal/config"
	"lms/internal/domain/model"
	"lms/internal/middleware"
	"lms/internal/usecase"
)

// /profile, /users のHTTP
type UserHandler struct {
	uc *usecase.UserUsecase
}

// DI
func NewUserHandler(uc *usecase.UserUsecase) *UserHandler {
	return &UserHandler{uc: uc}
}

type updateProfileRequest struct {
	Name     *string `json:"name"`
	DOB      *string `json:"dob"` // "2006-01-02"
	Path     *string `json:"path"`
	PhotoURL *string `json:"photo_url"`
}

func (h *UserHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/profile")
	g.Use(middleware.AuthJWT(cfg))

	g.GET("", h.getProfile)
	g.PUT("", h.updateProfile)
	g.DELETE("", h.deleteSelf)
	g.DELETE("/:id", h.deleteUser)

	u := e.Group("/users")
	u.Use(middleware.AuthJWT(cfg))
	u.Use(middleware.InstructorGuard())
	u.GET("", h.listUsers)
}

func (h *UserHandler) getProfile(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *UserHandler) updateProfile(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	in := usecase.UpdateProfileInput{
		Name:     req.Name,
		Path:     req.Path,
		PhotoURL: req.PhotoURL,
	}
	if req.DOB != nil {
		dob, err := time.Parse("2006-01-02", *req.DOB)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid dob"})
		}
		in.DOB = &dob
	}

	out, err := h.uc.UpdateProfile(c.Request().Context(), userID, in)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *UserHandler) deleteSelf(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	role, _ := getUserRoleFromContext(c)

	if err := h.uc.DeleteUser(c.Request().Context(), userID, model.Role(role), userID); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "user deleted"})
}

func (h *UserHandler) deleteUser(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	role, _ := getUserRoleFromContext(c)

	targetID := c.Param("id")
	if targetID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.DeleteUser(c.Request().Context(), userID, model.Role(role), targetID); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "user deleted"})
}

func (h *UserHandler) listUsers(c echo.Context) error {
	out, err := h.uc.ListUsers(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
