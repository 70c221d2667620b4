package api

import (
	"context"
	"encoding/base64"

	"github.com/aws/aws-lambda-go/events"
)

// FromAPIGateway converts an HTTP API (payload v2) event into a Request.
func FromAPIGateway(ev events.APIGatewayV2HTTPRequest) (Request, error) {
	body := []byte(ev.Body)
	if ev.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(ev.Body)
		if err != nil {
			return Request{}, Malformed(err)
		}
		body = decoded
	}

	return Request{
		Method:     ev.RequestContext.HTTP.Method,
		Path:       ev.RawPath,
		PathParams: ev.PathParameters,
		Query:      ev.QueryStringParameters,
		Body:       body,
	}, nil
}

func ToAPIGateway(resp Response) (events.APIGatewayV2HTTPResponse, error) {
	body, err := resp.MarshalBody()
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       string(body),
	}, nil
}

// LambdaHandler adapts a Router to the lambda.Start signature for API Gateway HTTP APIs.
func LambdaHandler(r *Router) func(context.Context, events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return func(ctx context.Context, ev events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		req, err := FromAPIGateway(ev)
		if err != nil {
			return ToAPIGateway(r.fail("", err))
		}
		return ToAPIGateway(r.Dispatch(ctx, req))
	}
}
