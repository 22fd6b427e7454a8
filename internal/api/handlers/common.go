package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/journai/internal/utils"
)

// Context keys set by the auth middleware.
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

type APIError struct {
	Success bool       `json:"success"`
	Error   string     `json:"error"`
	Code    utils.Code `json:"code"`
}

func writeError(c *gin.Context, err error) {
	writeErrorWith(c, err, nil)
}

// writeErrorWith adds extra fields next to the error body, e.g. hoursRemaining on a cooldown denial.
func writeErrorWith(c *gin.Context, err error, extra gin.H) {
	status := utils.HTTPStatus(err)
	_ = c.Error(err)

	body := APIError{Code: utils.CodeInternal, Error: http.StatusText(status)}
	var ae *utils.AppError
	if errors.As(err, &ae) {
		body.Code = ae.Code
		if ae.Message != "" {
			body.Error = ae.Message
		}
	}

	if len(extra) == 0 {
		c.JSON(status, body)
		return
	}
	out := gin.H{"success": false, "error": body.Error, "code": body.Code}
	for k, v := range extra {
		out[k] = v
	}
	c.JSON(status, out)
}

func badRequest(c *gin.Context, op, msg string, err error) {
	writeError(c, utils.E(utils.CodeInvalidArgument, op, msg, err))
}

// authorizeUID rejects requests whose uid differs from the token subject.
// Without auth middleware every uid is accepted.
func authorizeUID(c *gin.Context, uid string) bool {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return true
	}
	if sub, _ := v.(string); sub != "" && sub == uid {
		return true
	}
	writeError(c, utils.E(utils.CodeForbidden, "Auth", "uid does not match the authenticated user", nil))
	return false
}
