package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	appErrors "github.com/yoj3289/WeNectProject/internal/errors"
	"github.com/yoj3289/WeNectProject/internal/logger"
	"github.com/yoj3289/WeNectProject/internal/logic"
	"github.com/yoj3289/WeNectProject/internal/middleware"
)

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Data:    nil,
	})
}

// respondError 按错误种类映射状态码, 5xx 记录日志
func respondError(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	if appErr.StatusCode >= http.StatusInternalServerError {
		logger.Error("Request failed: %s %s, err=%v", c.Request.Method, c.FullPath(), err)
	}

	var data interface{}
	if len(appErr.Details) > 0 {
		data = appErr.Details
	}
	c.JSON(appErr.StatusCode, Response{
		Success: false,
		Message: appErr.Message,
		Code:    appErr.Code,
		Data:    data,
	})
}

// parseIdParam 解析路径中的数字 id, 失败时直接写 400
func parseIdParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		ErrorResponse(c, http.StatusBadRequest, "无效的ID")
		return 0, false
	}
	return id, true
}

func newPagination(page, pageSize int, total int64) Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	totalPage := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		totalPage++
	}
	return Pagination{Page: page, PageSize: pageSize, Total: total, TotalPage: totalPage}
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.DefaultQuery(key, strconv.Itoa(def)))
	if err != nil {
		return def
	}
	return v
}

// bindJSON 绑定请求体, 失败时写 400
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			respondError(c, appErrors.ParseValidationErrors(validationErrors))
			return false
		}
		respondError(c, appErrors.ErrValidation.WithMessage("请求格式错误").WithError(err))
		return false
	}
	return true
}

// actorFrom 当前请求的操作者
func actorFrom(c *gin.Context) logic.Actor {
	userId, _ := middleware.UserId(c)
	return logic.Actor{UserId: userId, IsAdmin: middleware.IsAdmin(c)}
}

// optionalUserId 登录用户 id, 匿名请求为 nil
func optionalUserId(c *gin.Context) *int64 {
	if userId, ok := middleware.UserId(c); ok {
		return &userId
	}
	return nil
}
