package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/marshallshelly/costume-shop/pkg/runtime"
)

const maxBodyBytes = 1 << 20

type message struct {
	Message string `json:"message"`
}

// badRequest marks client input that could not be read at all.
type badRequest struct {
	msg string
}

func (e *badRequest) Error() string { return e.msg }

func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError maps err to a response. Unreadable input is a 400; adapter
// failures, including not-found ids and constraint violations, are a 500 with
// a generic message and the detail goes to the log.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var br *badRequest
	if errors.As(err, &br) {
		writeJSON(w, http.StatusBadRequest, message{br.msg})
		return
	}

	level := s.logger.Error
	if errors.Is(err, runtime.ErrNotFound) || runtime.IsConstraintViolation(err) {
		level = s.logger.Warn
	}
	level("request failed",
		"request_id", RequestIDFromContext(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"error", err)

	writeJSON(w, http.StatusInternalServerError, message{"Oops! Server Error"})
}

// decode reads a JSON body into dst. Enum values outside their set surface as
// ValidationErrors, everything else as a bad request. Unknown keys are ignored.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var ve *runtime.ValidationError
		switch {
		case errors.As(err, &ve):
			return ve
		case errors.Is(err, io.EOF):
			return &badRequest{"request body is empty"}
		default:
			return &badRequest{fmt.Sprintf("invalid request body: %v", err)}
		}
	}
	return nil
}

// pathInt reads a numeric route variable.
func pathInt(r *http.Request, name string) (int, error) {
	raw := mux.Vars(r)[name]
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &badRequest{fmt.Sprintf("invalid %s %q", name, raw)}
	}
	return v, nil
}
