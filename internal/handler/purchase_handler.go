package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"lms/internal/config"
	"lms/internal/middleware"
	"lms/internal/usecase"
)

// /purchase のHTTP。webhookは認証なし（署名で検証する）。
type PurchaseHandler struct {
	checkoutUC *usecase.CheckoutUsecase
	queryUC    *usecase.PurchaseQueryUsecase
}

// DI
func NewPurchaseHandler(checkoutUC *usecase.CheckoutUsecase, queryUC *usecase.PurchaseQueryUsecase) *PurchaseHandler {
	return &PurchaseHandler{checkoutUC: checkoutUC, queryUC: queryUC}
}

// 単一コースは courseId、複数コースは courseIds で受ける
type createCheckoutSessionRequest struct {
	CourseID  string   `json:"courseId"`
	CourseIDs []string `json:"courseIds"`
}

func (h *PurchaseHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	// 署名検証だけで通す（Stripeからの呼び出し）
	e.POST("/purchase/webhook", h.webhook)

	g := e.Group("/purchase")
	g.Use(middleware.AuthJWT(cfg))

	g.POST("/checkout/create-checkout-session", h.createCheckoutSession)
	g.GET("/session/:sessionId/status", h.sessionStatus)
	g.GET("/course/:courseId/detail-with-status", h.courseDetailWithStatus)

	// 管理ダッシュボード（講師のみ）
	admin := e.Group("/purchase")
	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.InstructorGuard())
	admin.GET("/purchased", h.listPurchased)
	admin.GET("/stats/count", h.countByStatus)
	admin.GET("/stats/balance", h.balance)
	admin.GET("/stats/transactions", h.transactions)
}

func (h *PurchaseHandler) createCheckoutSession(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req createCheckoutSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	ids := req.CourseIDs
	if req.CourseID != "" {
		ids = append(ids, req.CourseID)
	}

	out, err := h.checkoutUC.BeginCheckout(c.Request().Context(), userID, ids)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// webhook は生のボディを署名検証に回す。
// 署名不正だけ400、それ以外は200でゲートウェイの再送を止める。
func (h *PurchaseHandler) webhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	sig := c.Request().Header.Get("Stripe-Signature")

	if err := h.checkoutUC.HandleWebhook(c.Request().Context(), payload, sig); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"received": true})
}

func (h *PurchaseHandler) sessionStatus(c echo.Context) error {
	out, err := h.checkoutUC.CheckSessionStatus(c.Request().Context(), c.Param("sessionId"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *PurchaseHandler) courseDetailWithStatus(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.queryUC.GetCourseDetailWithStatus(c.Request().Context(), userID, c.Param("courseId"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *PurchaseHandler) listPurchased(c echo.Context) error {
	out, err := h.queryUC.ListPurchased(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *PurchaseHandler) countByStatus(c echo.Context) error {
	status := c.QueryParam("status")
	if status == "" {
		status = "completed"
	}

	n, err := h.queryUC.CountByStatus(c.Request().Context(), status)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"status": status, "count": n})
}

func (h *PurchaseHandler) balance(c echo.Context) error {
	out, err := h.queryUC.GetBalance(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *PurchaseHandler) transactions(c echo.Context) error {
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)

	out, err := h.queryUC.ListTransactions(c.Request().Context(), limit)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
