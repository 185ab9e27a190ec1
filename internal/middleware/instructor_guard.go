package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// contextに入っているroleがINSTRUCTORかどうかを確認します。

func InstructorGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawRole := c.Get(CtxUserRoleKey)
			role, ok := rawRole.(string)
			if !ok || role == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			// STUDENTは拒否、INSTRUCTORだけ許可
			if role != "INSTRUCTOR" {
				return c.JSON(http.StatusForbidden, errorJSON("instructor only"))
			}

			return next(c)
		}
	}
}
