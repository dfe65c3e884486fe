package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/gameofchests/internal/api/apierr"
	"github.com/mcoot/gameofchests/internal/model"
)

// maxBodyBytes caps request bodies
const maxBodyBytes = 4 << 10

// WriteError writes err as a JSON API error
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// decodeBody decodes an optional JSON body into v. An empty body leaves v
// untouched; unknown fields are rejected.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	err := dec.Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return apierr.NewInvalidRequestError("Invalid request body")
}

func roomID(r *http.Request) model.RoomID {
	return model.RoomID(mux.Vars(r)["id"])
}
