// Package respond centralizes JSON encoding for the API: success
// bodies, taxonomy-coded error bodies, and request body decoding with a
// size cap.
package respond

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/pacerhub/pacerhub/internal/app/system/apperr"
)

// maxBodyBytes caps request bodies; every payload in this API is small.
const maxBodyBytes = 1 << 20

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error maps err through the apperr taxonomy and writes the JSON error
// body. Internal and failed-precondition causes are logged, never sent
// to the caller.
func Error(w http.ResponseWriter, log *zap.Logger, err error) {
	code := apperr.CodeOf(err)
	switch code {
	case apperr.Internal, apperr.FailedPrecondition:
		if log != nil {
			log.Error("request failed", zap.String("code", string(code)), zap.Error(err))
		}
	default:
		if log != nil {
			log.Debug("request rejected", zap.String("code", string(code)), zap.Error(err))
		}
	}
	JSON(w, apperr.HTTPStatus(code), errorBody{
		Error: errorDetail{Code: string(code), Message: apperr.MessageOf(err)},
	})
}

// Decode reads a JSON request body into dst, rejecting unknown junk
// with InvalidArgument.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.New(apperr.InvalidArgument, "request body is required")
		}
		return apperr.Wrap(apperr.InvalidArgument, "malformed JSON body", err)
	}
	return nil
}
