package validation

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/kbukum/accounts/errors"
)

// BindJSON decodes the request body into dst and validates it.
// The body must hold exactly one JSON value. Malformed bodies become
// bad-request failures, wrongly typed fields become type-mismatch failures,
// and rule violations go through Validate.
func BindJSON(c *gin.Context, dst any) error {
	if c.Request == nil || c.Request.Body == nil {
		return errors.BadRequest("request body is required")
	}
	body, err := c.GetRawData()
	if err != nil {
		return errors.BadRequest("request body could not be read").WithCause(err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return errors.BadRequest("request body is required")
	}
	if !json.Valid(body) {
		return errors.BadRequest("malformed JSON body")
	}
	if err := binding.JSON.BindBody(body, dst); err != nil {
		return decodeError(err)
	}
	return Validate(dst)
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &typeErr) && typeErr.Field != "" {
		field := typeErr.Field
		if i := strings.LastIndex(field, "."); i >= 0 {
			field = field[i+1:]
		}
		return errors.TypeMismatch(field, typeErr.Type.String()).WithCause(err)
	}
	return errors.BadRequest("malformed JSON body").WithCause(err)
}
