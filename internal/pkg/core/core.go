// Package core provides the uniform HTTP response envelope.
package core

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kiosk404/roundtable/pkg/errorx"
	"github.com/kiosk404/roundtable/pkg/logger"
)

// ErrResponse is the error body returned for any failed request.
type ErrResponse struct {
	// Code is the registered business error code.
	Code int `json:"code"`
	// Message is the user-safe description of the failure.
	Message string `json:"message"`
	// Reference optionally points at documentation for the error.
	Reference string `json:"reference,omitempty"`
}

// WriteResponse writes either an error envelope resolved through errorx or
// the success payload.
func WriteResponse(c *gin.Context, err error, data interface{}) {
	if err != nil {
		coder := errorx.ParseCoder(err)
		logger.Warn("request failed: code=%d detail=%v", coder.Code(), err)
		c.JSON(coder.HTTPStatus(), ErrResponse{
			Code:      coder.Code(),
			Message:   coder.String(),
			Reference: coder.Reference(),
		})
		return
	}

	c.JSON(http.StatusOK, data)
}
