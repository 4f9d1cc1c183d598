package handler

import "net/http"

// emptyResponse writes a status code and no body.
type emptyResponse struct {
	status int
}

func (e emptyResponse) Render(w http.ResponseWriter, r *http.Request) error {
	w.WriteHeader(e.status)
	return nil
}

// Empty returns a 204 No Content response. Handlers return it to skip
// model serialization, for example after a delete:
//
//	func deleteItem(ctx handler.Context) (any, error) {
//		if err := store.Delete(ctx, id); err != nil {
//			return nil, err
//		}
//		return handler.Empty(), nil
//	}
func Empty() Response {
	return emptyResponse{status: http.StatusNoContent}
}

// EmptyWithStatus returns a response with the given status and no body.
func EmptyWithStatus(status int) Response {
	return emptyResponse{status: status}
}
