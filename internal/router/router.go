package router

import (
	"github.com/fasthttp/router"

	apiHandler "github.com/fastygo/todo/api/handler"
)

type Handlers struct {
	Todo   *apiHandler.TodoHandler
	Health *apiHandler.HealthHandler
}

func New(handlers Handlers) *router.Router {
	r := router.New()
	r.NotFound = apiHandler.NotFound
	r.MethodNotAllowed = apiHandler.MethodNotAllowed

	api := r.Group("/api")

	api.GET("/health", handlers.Health.Check)
	api.GET("/ready", handlers.Health.Ready)

	api.GET("/todos", handlers.Todo.ListTodos)
	api.POST("/todos", handlers.Todo.CreateTodo)
	api.GET("/todos/{id}", handlers.Todo.GetTodo)
	api.PUT("/todos/{id}", handlers.Todo.UpdateTodo)
	api.DELETE("/todos/{id}", handlers.Todo.DeleteTodo)

	return r
}
