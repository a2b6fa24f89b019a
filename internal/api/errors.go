package api

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"hostel-backend/internal/apperr"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
	}
}

// jsonFieldName makes validation errors name fields as clients send them.
func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

// respondError writes err as {"message": ...} with the status of its kind.
// Unclassified errors are logged and reported as fallback.
func respondError(c *gin.Context, err error, fallback string) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		log.Printf("Error handling %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": fallback})
		return
	}
	c.JSON(kind.Status(), gin.H{"message": apperr.Message(err, fallback)})
}

// bindJSON decodes the body into dst and answers 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": bindingMessage(err)})
		return false
	}
	return true
}

// bindOptionalJSON is bindJSON for routes where the body may be omitted;
// an empty body leaves dst untouched.
func bindOptionalJSON(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	// Chunked bodies have an unknown length and may still be empty.
	err := c.ShouldBindJSON(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	c.JSON(http.StatusBadRequest, gin.H{"message": bindingMessage(err)})
	return false
}

func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return fe.Field() + " required"
		case "email":
			return fe.Field() + " must be a valid email"
		case "min":
			return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		case "oneof":
			return fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param())
		}
		return fe.Field() + " is invalid"
	}
	if errors.Is(err, io.EOF) {
		return "request body required"
	}
	return "invalid request body"
}

// idParam parses the :id path parameter.
func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

// queryInt parses an optional integer query parameter.
func queryInt(c *gin.Context, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid " + key})
		return 0, false
	}
	return n, true
}
