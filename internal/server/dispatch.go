package server

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/api"
)

// Dispatch adapts a service router to gin. Path parameters and the first value of
// each query parameter are handed over unchanged.
func Dispatch(r *api.Router) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			write(c, api.Fail(api.Malformed(err), r.AllowMethods(), nowUTC()))
			return
		}

		params := make(map[string]string, len(c.Params))
		for _, p := range c.Params {
			params[p.Key] = p.Value
		}
		query := make(map[string]string)
		for k, v := range c.Request.URL.Query() {
			if len(v) > 0 {
				query[k] = v[0]
			}
		}

		write(c, r.Dispatch(c.Request.Context(), api.Request{
			Method:     c.Request.Method,
			Path:       c.Request.URL.Path,
			PathParams: params,
			Query:      query,
			Body:       body,
		}))
	}
}

func write(c *gin.Context, resp api.Response) {
	for k, v := range resp.Headers {
		c.Header(k, v)
	}
	c.JSON(resp.StatusCode, resp.Body)
}
