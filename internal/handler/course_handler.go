package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"lms/internal/config"
	"lms/internal/middleware"
	"lms/internal/repository"
	"lms/internal/usecase"
)

// /courses, /lectures のHTTP
type CourseHandler struct {
	uc *usecase.CourseUsecase
}

// DI
func NewCourseHandler(uc *usecase.CourseUsecase) *CourseHandler {
	return &CourseHandler{uc: uc}
}

type createCourseRequest struct {
	Title        string          `json:"title"`
	Subtitle     string          `json:"subtitle"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Level        string          `json:"level"`
	Price        decimal.Decimal `json:"price"`
	ThumbnailURL string          `json:"thumbnail_url"`
}

type updateCourseRequest struct {
	Title        *string          `json:"title"`
	Subtitle     *string          `json:"subtitle"`
	Description  *string          `json:"description"`
	Category     *string          `json:"category"`
	Level        *string          `json:"level"`
	Price        *decimal.Decimal `json:"price"`
	ThumbnailURL *string          `json:"thumbnail_url"`
}

type publishRequest struct {
	Published bool `json:"published"`
}

type createLectureRequest struct {
	Title         string `json:"title"`
	VideoURL      string `json:"video_url"`
	PublicID      string `json:"public_id"`
	IsPreviewFree bool   `json:"is_preview_free"`
	Position      int    `json:"position"`
}

type updateLectureRequest struct {
	Title         *string `json:"title"`
	VideoURL      *string `json:"video_url"`
	PublicID      *string `json:"public_id"`
	IsPreviewFree *bool   `json:"is_preview_free"`
	Position      *int    `json:"position"`
}

func (h *CourseHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	// 公開API
	e.GET("/courses/published", h.listPublished)
	e.GET("/courses/search", h.search)
	e.GET("/courses/:id", h.getCourse)
	e.GET("/courses/:id/lectures", h.listLectures)

	// 講師のみ
	ins := e.Group("/courses")
	ins.Use(middleware.AuthJWT(cfg))
	ins.Use(middleware.InstructorGuard())
	ins.POST("", h.createCourse)
	ins.GET("/mine", h.listMine)
	ins.PUT("/:id", h.updateCourse)
	ins.PATCH("/:id/publish", h.publish)
	ins.DELETE("/:id", h.deleteCourse)
	ins.POST("/:id/lectures", h.createLecture)

	// 講義（閲覧はログイン必須、編集は講師のみ）
	lec := e.Group("/lectures")
	lec.Use(middleware.AuthJWT(cfg))
	lec.GET("/:id", h.getLecture)

	lecIns := e.Group("/lectures")
	lecIns.Use(middleware.AuthJWT(cfg))
	lecIns.Use(middleware.InstructorGuard())
	lecIns.PUT("/:id", h.updateLecture)
	lecIns.DELETE("/:id", h.deleteLecture)
}

func (h *CourseHandler) listPublished(c echo.Context) error {
	out, err := h.uc.ListPublished(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CourseHandler) search(c echo.Context) error {
	f := repository.CourseSearchFilter{
		Query:       c.QueryParam("query"),
		SortByPrice: c.QueryParam("sort"),
	}
	if raw := c.QueryParam("categories"); raw != "" {
		f.Categories = strings.Split(raw, ",")
	}

	out, err := h.uc.Search(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CourseHandler) getCourse(c echo.Context) error {
	course, lectures, err := h.uc.GetCourse(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"course": course, "lectures": lectures})
}

func (h *CourseHandler) listLectures(c echo.Context) error {
	_, lectures, err := h.uc.GetCourse(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, lectures)
}

func (h *CourseHandler) createCourse(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req createCourseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.CreateCourse(c.Request().Context(), userID, usecase.CreateCourseInput{
		Title:        req.Title,
		Subtitle:     req.Subtitle,
		Description:  req.Description,
		Category:     req.Category,
		Level:        req.Level,
		Price:        req.Price,
		ThumbnailURL: req.ThumbnailURL,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *CourseHandler) listMine(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.ListByCreator(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CourseHandler) updateCourse(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req updateCourseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.UpdateCourse(c.Request().Context(), userID, c.Param("id"), usecase.UpdateCourseInput{
		Title:        req.Title,
		Subtitle:     req.Subtitle,
		Description:  req.Description,
		Category:     req.Category,
		Level:        req.Level,
		Price:        req.Price,
		ThumbnailURL: req.ThumbnailURL,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CourseHandler) publish(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req publishRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.SetPublished(c.Request().Context(), userID, c.Param("id"), req.Published); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "publish state updated"})
}

func (h *CourseHandler) deleteCourse(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.DeleteCourse(c.Request().Context(), userID, c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "course deleted"})
}

func (h *CourseHandler) createLecture(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req createLectureRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.CreateLecture(c.Request().Context(), userID, c.Param("id"), usecase.CreateLectureInput{
		Title:         req.Title,
		VideoURL:      req.VideoURL,
		PublicID:      req.PublicID,
		IsPreviewFree: req.IsPreviewFree,
		Position:      req.Position,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *CourseHandler) getLecture(c echo.Context) error {
	userID, _ := getUserIDFromContext(c)

	out, err := h.uc.GetLecture(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CourseHandler) updateLecture(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req updateLectureRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.UpdateLecture(c.Request().Context(), userID, c.Param("id"), usecase.UpdateLectureInput{
		Title:         req.Title,
		VideoURL:      req.VideoURL,
		PublicID:      req.PublicID,
		IsPreviewFree: req.IsPreviewFree,
		Position:      req.Position,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CourseHandler) deleteLecture(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.DeleteLecture(c.Request().Context(), userID, c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "lecture deleted"})
}
