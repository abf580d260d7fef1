package oracle

import (
	"encoding/json"
	"errors"
	"net/http"
)

// CallbackHandler returns an HTTP handler for the oracle's response
// callbacks. The oracle posts a JSON body {"id": ..., "response": ...};
// the handler records the response and replies 204 No Content.
//
// Unknown request IDs map to 404 and duplicate responses to 409, so a
// misbehaving oracle gets a status it can act on instead of a silent drop.
func (c *Client) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var cb callbackPayload
		if err := json.NewDecoder(r.Body).Decode(&cb); err != nil {
			http.Error(w, "invalid callback payload", http.StatusBadRequest)
			return
		}

		if err := c.Record(cb.ID, cb.Response); err != nil {
			switch {
			case errors.Is(err, ErrUnknownRequest):
				http.Error(w, err.Error(), http.StatusNotFound)
			case errors.Is(err, ErrAlreadyAnswered):
				http.Error(w, err.Error(), http.StatusConflict)
			default:
				http.Error(w, err.Error(), http.StatusBadRequest)
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
