// Package response renders the {code, msg, data} envelope every endpoint returns.
package response

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"

	bizerr "admin-gateway/pkg/common/errors"
)

const (
	CodeSuccess      = 2000
	CodeFailure      = 4000
	CodeUnauthorized = 401
	CodeServerError  = 5000
)

type Body struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

// Detail 成功响应，msg 为空时使用默认文案
func Detail(c *app.RequestContext, data interface{}, msg string) {
	if msg == "" {
		msg = "success"
	}
	c.JSON(http.StatusOK, Body{Code: CodeSuccess, Msg: msg, Data: data})
}

// Error 业务失败，HTTP 状态码仍为 200
func Error(c *app.RequestContext, msg string) {
	c.JSON(http.StatusOK, Body{Code: CodeFailure, Msg: msg})
}

func Unauthorized(c *app.RequestContext, status int, msg string) {
	c.AbortWithStatusJSON(status, Body{Code: CodeUnauthorized, Msg: msg})
}

// FromError 校验错误按业务失败返回，其余错误记录日志后返回 500
func FromError(ctx context.Context, c *app.RequestContext, err error) {
	_ = c.Error(bizerr.Public(err, nil))
	if bizerr.IsValidation(err) {
		Error(c, err.Error())
		return
	}
	hlog.CtxErrorf(ctx, "request %s failed: %v", c.Path(), err)
	c.JSON(http.StatusInternalServerError, Body{Code: CodeServerError, Msg: "internal server error"})
}
