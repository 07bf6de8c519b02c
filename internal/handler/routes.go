package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/sales_bonus/internal/service/serviceutils"
)

func RegisterBonusRoutes(e *echo.Echo, h *BonusHandler) {
	e.GET("/healthz", HealthzHandler)

	bonusGroup := e.Group("/bonus")
	bonusGroup.POST("/evaluate", h.EvaluateHandler)
	bonusGroup.POST("/run", h.RunHandler)
	bonusGroup.GET("/preview", h.PreviewHandler)
	bonusGroup.GET("/report", h.ReportHandler)
	bonusGroup.GET("/audit", h.AuditHandler)
}

func HealthzHandler(c echo.Context) error {
	return serviceutils.ResponseSuccess(c, http.StatusOK, "ok", nil)
}
