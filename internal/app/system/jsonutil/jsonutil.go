// Package jsonutil writes JSON responses and the API error envelope used by
// the sensors and lights endpoints.
package jsonutil

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrorBody is the error envelope: {"error_message": ..., "error_code": ...}.
// RequestID lets an operator find the matching log line.
type ErrorBody struct {
	ErrorMessage string `json:"error_message"`
	ErrorCode    int    `json:"error_code"`
	RequestID    string `json:"request_id,omitempty"`
}

// Write encodes v with the given status.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes the error envelope and logs it. 5xx responses hide msg from
// the client and log it instead.
func Error(w http.ResponseWriter, log *zap.Logger, status int, msg string, err error) {
	id := uuid.NewString()
	body := ErrorBody{ErrorMessage: msg, ErrorCode: status, RequestID: id}
	if status >= http.StatusInternalServerError {
		body.ErrorMessage = "Application error"
	}
	if log != nil {
		fields := []zap.Field{
			zap.String("request_id", id),
			zap.Int("status", status),
			zap.String("message", msg),
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		if status >= http.StatusInternalServerError {
			log.Error("api error", fields...)
		} else {
			log.Debug("api error", fields...)
		}
	}
	Write(w, status, body)
}
