package response

import (
	"Mediahub/internal/api/dto"
	"Mediahub/internal/service"
	stdjson "encoding/json"
	"errors"
	"io"
	log "log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

const (
	Ok                  = 200
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	InternalServerError = 500
	ServiceUnavailable  = 503
)

// Success 成功返回封装
func Success(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, dto.Response{
		Code:    Ok,
		Message: "success",
		Data:    data,
	})
}

// Fail 失败返回封装
func Fail(c *gin.Context, businessCode int, message string) {
	c.JSON(http.StatusOK, dto.Response{
		Code:    businessCode,
		Message: message,
		Data:    nil,
	})
}

// Error 处理错误，业务错误沿错误链映射为业务码，其余按 500 处理
func Error(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		Fail(c, BadRequest, "参数错误")
		return
	}

	if isJSONError(err) {
		Fail(c, BadRequest, "Json错误")
		return
	}
	var numError *strconv.NumError
	if errors.As(err, &numError) {
		Fail(c, BadRequest, "参数错误")
		return
	}

	code, ok := service.CodeOf(err)
	if !ok {
		log.ErrorContext(c.Request.Context(), "Error", "err", err)
		Fail(c, InternalServerError, service.UnExpectedError.Error())
		return
	}
	if code >= InternalServerError {
		log.WarnContext(c.Request.Context(), "request failed", "code", code, "err", err)
	}
	Fail(c, code, err.Error())
}

// BindError 请求绑定失败一律按参数错误返回
func BindError(c *gin.Context, err error) {
	if isJSONError(err) {
		Fail(c, BadRequest, "Json错误")
		return
	}
	Fail(c, BadRequest, "参数错误")
}

// isJSONError gin 默认使用标准库解码，两种实现的错误都需要识别
func isJSONError(err error) bool {
	var unmarshalTypeError *json.UnmarshalTypeError
	var syntaxError *json.SyntaxError
	var stdTypeError *stdjson.UnmarshalTypeError
	var stdSyntaxError *stdjson.SyntaxError
	return errors.As(err, &unmarshalTypeError) ||
		errors.As(err, &syntaxError) ||
		errors.As(err, &stdTypeError) ||
		errors.As(err, &stdSyntaxError) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}
