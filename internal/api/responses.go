package api

import (
	"encoding/json"
	"net/http"
	"time"
)

type HealthResponse struct {
	Status   string              `json:"status"`
	Services map[string][]string `json:"services,omitempty"`
}

// Envelope is the body shape shared by every service response.
type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       Envelope
}

func Headers(allowMethods string) map[string]string {
	return map[string]string{
		"Content-Type":                 "application/json",
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": allowMethods,
		"Access-Control-Allow-Headers": "Content-Type, Authorization",
	}
}

func OK(data any, allowMethods string, now time.Time) Response {
	return Response{
		StatusCode: http.StatusOK,
		Headers:    Headers(allowMethods),
		Body: Envelope{
			Success:   true,
			Data:      data,
			Timestamp: now.UTC().Format(time.RFC3339Nano),
		},
	}
}

func Fail(err error, allowMethods string, now time.Time) Response {
	return Response{
		StatusCode: StatusCode(err),
		Headers:    Headers(allowMethods),
		Body: Envelope{
			Success:   false,
			Error:     PublicMessage(err),
			Timestamp: now.UTC().Format(time.RFC3339Nano),
		},
	}
}

func (r Response) MarshalBody() ([]byte, error) {
	return json.Marshal(r.Body)
}
