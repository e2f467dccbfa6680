package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type requestIDKey struct{}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Read up to 100KB of JSON.
const maxJSONSize = 100 * 1024

func handleApiRequest(r *http.Request, s *Server) (any, *APIError) {
	// Get the type.
	type_ := r.Header.Get("X-Type")
	if type_ == "" {
		return nil, &APIError{
			status:  http.StatusBadRequest,
			Code:    ErrorCodeInvalidType,
			Message: "X-Type header is required",
		}
	}

	// Create the API server and use reflection to get the handler.
	api := &apiServer{s: s}
	reflectVal := reflect.ValueOf(api)

	// Get the handler.
	handler := reflectVal.MethodByName(type_)
	if !handler.IsValid() {
		return nil, &APIError{
			status:  http.StatusBadRequest,
			Code:    ErrorCodeInvalidType,
			Message: "Invalid type",
		}
	}

	// Get the JSON reader either from the body or X-Json-Body. The body is
	// left untouched when the header is used so it can carry the image.
	var re io.Reader = r.Body
	if r.Header.Get("X-Json-Body") != "" {
		re = strings.NewReader(r.Header.Get("X-Json-Body"))
	}
	b, err := io.ReadAll(io.LimitReader(re, maxJSONSize))
	if err != nil {
		return nil, &APIError{
			status:  http.StatusBadRequest,
			Code:    ErrorTypeInvalidJSON,
			Message: "Invalid JSON",
		}
	}

	// Get a instance of the first parameters type and decode the JSON into it.
	v := reflect.New(handler.Type().In(1).Elem()).Interface()
	if err := json.Unmarshal(b, v); err != nil {
		return nil, &APIError{
			status:  http.StatusBadRequest,
			Code:    ErrorTypeInvalidJSON,
			Message: "Invalid JSON",
		}
	}

	// Call the handler.
	ret := handler.Call([]reflect.Value{
		reflect.ValueOf(r),
		reflect.ValueOf(v),
	})

	// If there is only one return value, return just the error.
	if len(ret) == 1 {
		return nil, ret[0].Interface().(*APIError)
	}

	// Get the last return value which is the error.
	errVal := ret[1].Interface()
	if errVal != (*APIError)(nil) {
		return nil, errVal.(*APIError)
	}

	// Return the first return value.
	return ret[0].Interface(), nil
}

func (s *Server) api(w http.ResponseWriter, r *http.Request) {
	id := uuid.Must(uuid.NewRandom()).String()
	r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id))
	log := s.logger().With(zap.String("request_id", id), zap.String("type", r.Header.Get("X-Type")))

	// Render the JSON into the writer.
	var encodeJson func(v any, status int)
	encodeJson = func(v any, status int) {
		b, err := json.Marshal(v)
		if err != nil {
			log.Error("Error encoding JSON", zap.Error(err))
			encodeJson(&APIError{
				status:  http.StatusInternalServerError,
				Code:    ErrorCodeInternalServerError,
				Message: "Internal Server Error",
			}, http.StatusInternalServerError)
			return
		}

		// Set headers that will always be sent.
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Content-Length", strconv.Itoa(len(b)))
		w.Header().Set("X-Request-Id", id)

		// Write the status code.
		w.WriteHeader(status)
		_, _ = w.Write(b)
	}

	// Handle recovers.
	defer func() {
		r := recover()
		if r != nil {
			log.Error("Panic", zap.Any("panic", r))
			encodeJson(&APIError{
				status:  http.StatusInternalServerError,
				Code:    ErrorCodeInternalServerError,
				Message: "Internal Server Error",
			}, http.StatusInternalServerError)
		}
	}()

	if s.Limiter != nil && !s.Limiter.Allow() {
		encodeJson(&APIError{
			status:  http.StatusTooManyRequests,
			Code:    ErrorCodeRateLimited,
			Message: "Too many requests",
		}, http.StatusTooManyRequests)
		return
	}

	// Make the request.
	resp, err := handleApiRequest(r, s)
	if err != nil {
		log.Debug("API error", zap.String("code", string(err.Code)), zap.String("message", err.Message))
		encodeJson(err, err.status)
		return
	}
	if resp == nil {
		// No response.
		w.Header().Set("X-Request-Id", id)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	encodeJson(resp, http.StatusOK)
}
