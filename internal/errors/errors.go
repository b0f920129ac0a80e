package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var (
	ErrNotFound                 = NewAppError("NOT_FOUND", "资源不存在", http.StatusNotFound)
	ErrInvalidState             = NewAppError("INVALID_STATE", "当前状态不允许该操作", http.StatusConflict)
	ErrGatewayFailure           = NewAppError("GATEWAY_FAILURE", "支付网关调用失败", http.StatusBadGateway)
	ErrAggregateUpdateFailure   = NewAppError("AGGREGATE_UPDATE_FAILURE", "项目统计更新失败", http.StatusInternalServerError)
	ErrValidation               = NewAppError("VALIDATION_ERROR", "参数校验失败", http.StatusBadRequest)
	ErrUnsupportedPaymentMethod = NewAppError("UNSUPPORTED_PAYMENT_METHOD", "不支持的支付方式", http.StatusBadRequest)
	ErrUnauthorized             = NewAppError("UNAUTHORIZED", "未授权", http.StatusUnauthorized)
	ErrForbidden                = NewAppError("FORBIDDEN", "无权访问", http.StatusForbidden)
	ErrInternal                 = NewAppError("INTERNAL_SERVER_ERROR", "服务器内部错误", http.StatusInternalServerError)
)

// AppError 业务错误, Code 决定错误种类
type AppError struct {
	Code       string
	Message    string
	StatusCode int
	Details    map[string]interface{}
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s - %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按 Code 匹配, 使 errors.Is(err, ErrNotFound) 对克隆出的错误同样成立
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	clone := e.clone()
	for k, v := range details {
		clone.Details[k] = v
	}
	return clone
}

func (e *AppError) WithError(err error) *AppError {
	clone := e.clone()
	clone.Err = err
	return clone
}

// WithMessage 替换面向调用方的提示信息
func (e *AppError) WithMessage(message string) *AppError {
	clone := e.clone()
	clone.Message = message
	return clone
}

func NewAppError(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    make(map[string]interface{}),
	}
}

func (e *AppError) clone() *AppError {
	clone := *e
	clone.Details = make(map[string]interface{}, len(e.Details))
	for k, v := range e.Details {
		clone.Details[k] = v
	}
	return &clone
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// FromError 把任意错误转换为 AppError, 未知错误统一视为内部错误
func FromError(err error) *AppError {
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}

	if errors.Is(err, context.Canceled) {
		return &AppError{
			Code:       "REQUEST_CANCELED",
			Message:    "请求已取消",
			StatusCode: http.StatusRequestTimeout,
			Details:    make(map[string]interface{}),
			Err:        err,
		}
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return ParseValidationErrors(validationErrors)
	}

	return ErrInternal.WithError(err)
}

// NewNotFoundError 指定资源不存在
func NewNotFoundError(resource string) *AppError {
	return ErrNotFound.
		WithMessage(fmt.Sprintf("%s不存在", resource)).
		WithDetails(map[string]interface{}{"resource": resource})
}

// NewValidationError 单字段校验失败
func NewValidationError(field, message string) *AppError {
	return ErrValidation.
		WithMessage(message).
		WithDetails(map[string]interface{}{"field": field})
}

// ParseValidationErrors 将 validator 错误转换为字段列表
func ParseValidationErrors(validationErrors validator.ValidationErrors) *AppError {
	fieldErrors := make([]map[string]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		fieldErrors = append(fieldErrors, map[string]string{
			"field": fieldErr.Field(),
			"rule":  fieldErr.Tag(),
		})
	}
	return ErrValidation.WithError(validationErrors).WithDetails(map[string]interface{}{
		"fields": fieldErrors,
	})
}
