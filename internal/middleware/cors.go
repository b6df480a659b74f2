package middleware

import (
	"github.com/valyala/fasthttp"
)

const (
	corsAllowMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsAllowHeaders = "Content-Type, X-Request-ID"
	corsMaxAge       = "86400"
)

// CORS allows every origin on every route and answers preflight requests directly.
func CORS() Middleware {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			ctx.Response.Header.Set(fasthttp.HeaderAccessControlAllowOrigin, "*")
			ctx.Response.Header.Set(fasthttp.HeaderAccessControlExposeHeaders, "X-Request-ID")

			if ctx.IsOptions() && len(ctx.Request.Header.Peek(fasthttp.HeaderAccessControlRequestMethod)) > 0 {
				allowHeaders := corsAllowHeaders
				if requested := ctx.Request.Header.Peek(fasthttp.HeaderAccessControlRequestHeaders); len(requested) > 0 {
					allowHeaders = string(requested)
				}
				ctx.Response.Header.Set(fasthttp.HeaderAccessControlAllowMethods, corsAllowMethods)
				ctx.Response.Header.Set(fasthttp.HeaderAccessControlAllowHeaders, allowHeaders)
				ctx.Response.Header.Set(fasthttp.HeaderAccessControlMaxAge, corsMaxAge)
				ctx.SetStatusCode(fasthttp.StatusNoContent)
				return
			}

			next(ctx)
		}
	}
}
