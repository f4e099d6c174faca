// Package server wires the snapshot/swap state, the PIR protocol, and the
// bucket/stem index up to the HTTP surface spec.md §6 describes: a chi
// router, permissive CORS (mirroring the original implementation's
// tower_http::cors::CorsLayer::permissive()), prometheus metrics labeled
// only by lane/outcome, a gorilla/websocket delta broadcaster, and a single
// error-translation boundary per §7's propagation policy.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/statepir/inspire/apperr"
	"github.com/statepir/inspire/index"
	"github.com/statepir/inspire/pir"
)

// errorResponse is the JSON body written for every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// writeError is the single translation point from an internal error to an
// HTTP status code (§7: "the HTTP shell translates to status codes once, at
// the outer boundary"). Every handler funnels its errors through here.
func writeError(w http.ResponseWriter, err error) {
	status, kind := classify(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: err.Error(), Kind: kind})
}

func classify(err error) (int, string) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		switch appErr.Kind {
		case apperr.KindLaneNotLoaded:
			return http.StatusServiceUnavailable, appErr.Kind.String()
		case apperr.KindInvalidQuery:
			return http.StatusBadRequest, appErr.Kind.String()
		case apperr.KindPirError:
			return http.StatusInternalServerError, appErr.Kind.String()
		case apperr.KindConfigMismatch, apperr.KindParamsVersionMismatch, apperr.KindIO:
			return http.StatusServiceUnavailable, appErr.Kind.String()
		default:
			return http.StatusInternalServerError, appErr.Kind.String()
		}
	}

	switch {
	case errors.Is(err, pir.ErrIndexOutOfBounds), errors.Is(err, pir.ErrInvalidQuery):
		return http.StatusBadRequest, apperr.KindInvalidQuery.String()
	case errors.Is(err, index.ErrIndexOverflow):
		return http.StatusBadRequest, "index_overflow"
	case errors.Is(err, index.ErrStemNotFound):
		return http.StatusNotFound, "stem_not_found"
	default:
		return http.StatusInternalServerError, apperr.KindPirError.String()
	}
}
