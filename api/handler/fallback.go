package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
)

var fallback = newBaseHandler(nil, nil)

// NotFound answers requests that match no route.
func NotFound(ctx *fasthttp.RequestCtx) {
	fallback.respondMessage(ctx, http.StatusNotFound, "Not found")
}

// MethodNotAllowed answers requests whose path exists under another method.
func MethodNotAllowed(ctx *fasthttp.RequestCtx) {
	fallback.respondMessage(ctx, http.StatusMethodNotAllowed, "Method not allowed")
}
