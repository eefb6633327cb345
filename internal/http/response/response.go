package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cliplab/annotation-backend/internal/pkg/apperr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
	Index   *int   `json:"index,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAppError maps a service error to its HTTP status using the error's
// kind; the kind doubles as the machine-readable code. Batch errors carry the
// failing item index.
func RespondAppError(c *gin.Context, err error) {
	apiErr := APIError{
		Message: "unknown error",
		Code:    string(apperr.KindStoreFailure),
	}
	if err != nil {
		apiErr.Message = err.Error()
		apiErr.Code = string(apperr.KindOf(err))
	}
	var e *apperr.Error
	if errors.As(err, &e) {
		apiErr.Field = e.Field
		if e.Index >= 0 {
			idx := e.Index
			apiErr.Index = &idx
		}
	}
	c.JSON(apperr.HTTPStatus(err), ErrorEnvelope{Error: apiErr})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
