package response

import (
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
)

// ResponseMetadata represents the metadata for responses
type ResponseMetadata struct {
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
	RequestID string `json:"requestId,omitempty"`
}

// DefaultHeaders returns the default headers for all responses
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type":                 "application/json",
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type,X-Amz-Date,Authorization,X-Api-Key,traceparent",
		"Access-Control-Allow-Methods": "OPTIONS,POST",
	}
}

// RawSuccess serializes data as the whole response body
func RawSuccess(data interface{}, statusCode int, requestID string) events.APIGatewayProxyResponse {
	body, err := json.Marshal(data)
	if err != nil {
		// Fallback for JSON marshaling errors
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Body:       `{"success":false,"error":"INTERNAL_ERROR","error_description":{"message":"Failed to marshal response"}}`,
			Headers:    DefaultHeaders(),
		}
	}

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Body:       string(body),
		Headers:    DefaultHeaders(),
	}
}

// RawOK creates a standard OK (200) response
func RawOK(data interface{}, requestID string) events.APIGatewayProxyResponse {
	return RawSuccess(data, http.StatusOK, requestID)
}

// Preflight answers a CORS preflight request
func Preflight() events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    DefaultHeaders(),
	}
}

// WriteProxyResponse writes an API Gateway response to an http.ResponseWriter
func WriteProxyResponse(w http.ResponseWriter, resp events.APIGatewayProxyResponse) {
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	for key, values := range resp.MultiValueHeaders {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}

	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if resp.Body != "" {
		_, _ = w.Write([]byte(resp.Body))
	}
}
