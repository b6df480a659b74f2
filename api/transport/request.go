package transport

import (
	"encoding/json"

	"github.com/fastygo/todo/domain"
)

// TodoRequest is the body of create and update requests. Pointer fields
// distinguish an absent key from a zero value.
type TodoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// DecodeTodoRequest parses body. An empty body decodes to an empty request;
// anything that is not a JSON object with the expected field types yields
// domain.ErrInvalidPayload.
func DecodeTodoRequest(body []byte) (TodoRequest, error) {
	var req TodoRequest
	if len(body) == 0 {
		return req, nil
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return TodoRequest{}, domain.WrapError(domain.ErrCodeInvalid, domain.ErrInvalidPayload.Message, err)
	}
	return req, nil
}

// Patch returns the fields present in the request as a domain patch.
func (r TodoRequest) Patch() domain.TodoPatch {
	return domain.TodoPatch{
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
	}
}
