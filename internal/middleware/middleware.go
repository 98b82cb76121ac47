package middleware

import (
	"github.com/gin-gonic/gin"
)

// Middleware 基础中间件链，先于业务路由挂载到引擎上
// RequestId必须最先执行，后面的日志和响应封装都依赖context里的requestId
type Middleware struct {
}

func NewMiddleware() *Middleware {
	return &Middleware{}
}

func (m *Middleware) Load(g *gin.Engine) {
	g.Use(RequestId())
	g.Use(Logger)
	g.Use(NoCache())
	g.Use(Options())
	g.Use(Secure())
}
