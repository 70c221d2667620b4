package api

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// Request is the transport-neutral form of an incoming call.
type Request struct {
	Method     string
	Path       string
	PathParams map[string]string
	Query      map[string]string
	Body       []byte
}

// DecodeBody unmarshals the JSON body into v. An empty body decodes as {}.
func (r Request) DecodeBody(v any) error {
	body := bytes.TrimSpace(r.Body)
	if len(body) == 0 {
		body = []byte("{}")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return Malformed(err)
	}
	return nil
}

func (r Request) PathParam(name string) string {
	if r.PathParams == nil {
		return ""
	}
	return r.PathParams[name]
}

func (r Request) IsPreflight() bool {
	return r.Method == http.MethodOptions
}
