// Package controller exposes the RPC routers over HTTP.
//
// Procedures are addressed as /api/trpc/{router}.{procedure}. Queries use GET
// with the JSON input in the "input" query parameter; mutations use POST with
// the JSON input as the body.
package controller

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"

	appErrors "github.com/unclebandit/adsadmin-backend/internal/errors"
	"github.com/unclebandit/adsadmin-backend/internal/logging"
	"github.com/unclebandit/adsadmin-backend/internal/rpc"
)

const maxBodyBytes = 1 << 20

// JSON-RPC style codes carried next to the HTTP status.
const (
	codeBadRequest       = -32600
	codeNotFound         = -32004
	codeMethodNotAllowed = -32005
	codeInternal         = -32603
)

type RPCController struct {
	Registry *rpc.Registry
}

type successBody struct {
	Result resultBody `json:"result"`
}

type resultBody struct {
	Data any `json:"data"`
}

type errorBody struct {
	Error errorShape `json:"error"`
}

type errorShape struct {
	Message string    `json:"message"`
	Code    int       `json:"code"`
	Data    errorData `json:"data"`
}

type errorData struct {
	Code       string                  `json:"code"`
	HTTPStatus int                     `json:"httpStatus"`
	Path       string                  `json:"path,omitempty"`
	Fields     []appErrors.FieldError `json:"fields,omitempty"`
}

// Handle serves one procedure call.
func (c *RPCController) Handle(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "path")

	p, ok := c.Registry.Resolve(path)
	if !ok {
		writeError(w, path, http.StatusNotFound, "NOT_FOUND", codeNotFound, "no procedure on path "+path, nil)
		return
	}

	var input json.RawMessage
	switch {
	case p.Kind == rpc.KindQuery && r.Method == http.MethodGet:
		if raw := r.URL.Query().Get("input"); raw != "" {
			input = json.RawMessage(raw)
		}
	case p.Kind == rpc.KindMutation && r.Method == http.MethodPost:
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			writeError(w, path, http.StatusBadRequest, "BAD_REQUEST", codeBadRequest, "invalid request body", nil)
			return
		}
		input = body
	default:
		writeError(w, path, http.StatusMethodNotAllowed, "METHOD_NOT_SUPPORTED", codeMethodNotAllowed,
			"unsupported "+r.Method+" for "+string(p.Kind)+" procedure", nil)
		return
	}

	out, err := rpc.Invoke(r.Context(), p, input)
	if err != nil {
		c.writeProcedureError(w, r, path, err)
		return
	}
	writeJSON(w, http.StatusOK, successBody{Result: resultBody{Data: out}})
}

func (c *RPCController) writeProcedureError(w http.ResponseWriter, r *http.Request, path string, err error) {
	var verr *appErrors.ValidationError
	var nf *appErrors.NotFoundError
	switch {
	case errors.As(err, &verr):
		writeError(w, path, http.StatusBadRequest, "BAD_REQUEST", codeBadRequest, verr.Error(), verr.Fields)
	case errors.As(err, &nf):
		writeError(w, path, http.StatusNotFound, "NOT_FOUND", codeNotFound, nf.Error(), nil)
	default:
		logging.Error().Err(err).
			Str("path", path).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("procedure failed")
		writeError(w, path, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", codeInternal, err.Error(), nil)
	}
}

func writeError(w http.ResponseWriter, path string, status int, code string, rpcCode int, msg string, fields []appErrors.FieldError) {
	writeJSON(w, status, errorBody{Error: errorShape{
		Message: msg,
		Code:    rpcCode,
		Data: errorData{
			Code:       code,
			HTTPStatus: status,
			Path:       path,
			Fields:     fields,
		},
	}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn().Err(err).Msg("failed to encode response")
	}
}
