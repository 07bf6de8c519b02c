package serviceutils

import (
	"github.com/labstack/echo/v4"

	"github.com/locvowork/sales_bonus/internal/logger"
)

// APIResponse is the JSON envelope of every API reply.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ResponseSuccess writes a successful envelope.
func ResponseSuccess(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ResponseError logs err and writes a failed envelope.
func ResponseError(c echo.Context, status int, message string, err error) error {
	resp := APIResponse{Success: false, Message: message}
	if err != nil {
		resp.Error = err.Error()
		logger.ErrorLog(c.Request().Context(), message+": %v", err)
	}
	return c.JSON(status, resp)
}
