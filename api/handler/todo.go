package handler

import (
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/todo/api/transport"
	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/pkg/httpcontext"
	todoUC "github.com/fastygo/todo/usecase/todo"
)

const msgDeleted = "Todo deleted successfully"

type TodoHandler struct {
	baseHandler
	uc *todoUC.UseCase
}

func NewTodoHandler(uc *todoUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TodoHandler {
	return &TodoHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List todos, newest first
// @Tags todos
// @Router /api/todos [get]
func (h *TodoHandler) ListTodos(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	todos, err := h.uc.ListTodos(stdCtx)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewTodoListResponse(todos))
}

// @Summary Get todo
// @Tags todos
// @Router /api/todos/{id} [get]
func (h *TodoHandler) GetTodo(ctx *fasthttp.RequestCtx) {
	id, ok := h.todoID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	todo, err := h.uc.GetTodo(stdCtx, id)
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewTodoResponse(*todo))
}

// @Summary Create todo
// @Tags todos
// @Accept json
// @Produce json
// @Router /api/todos [post]
func (h *TodoHandler) CreateTodo(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	req, err := transport.DecodeTodoRequest(ctx.PostBody())
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}

	created, err := h.uc.CreateTodo(stdCtx, todoUC.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusCreated, transport.NewTodoResponse(*created))
}

// @Summary Update todo; absent fields keep their values
// @Tags todos
// @Accept json
// @Produce json
// @Router /api/todos/{id} [put]
func (h *TodoHandler) UpdateTodo(ctx *fasthttp.RequestCtx) {
	id, ok := h.todoID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	req, err := transport.DecodeTodoRequest(ctx.PostBody())
	if err != nil {
		// A missing todo is reported ahead of a bad body.
		if _, getErr := h.uc.GetTodo(stdCtx, id); getErr != nil {
			err = getErr
		}
		h.respondError(stdCtx, ctx, err)
		return
	}

	updated, err := h.uc.UpdateTodo(stdCtx, id, req.Patch())
	if err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewTodoResponse(*updated))
}

// @Summary Delete todo
// @Tags todos
// @Router /api/todos/{id} [delete]
func (h *TodoHandler) DeleteTodo(ctx *fasthttp.RequestCtx) {
	id, ok := h.todoID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteTodo(stdCtx, id); err != nil {
		h.respondError(stdCtx, ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.MessageResponse{Message: msgDeleted})
}

// todoID parses the {id} route parameter. Ids that are not integers cannot
// name a todo, so they are answered with 404.
func (h *TodoHandler) todoID(ctx *fasthttp.RequestCtx) (int64, bool) {
	raw, _ := ctx.UserValue("id").(string)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.respondMessage(ctx, http.StatusNotFound, domain.ErrTodoNotFound.Message)
		return 0, false
	}
	return id, true
}
