package response

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/oraxus/sports-gateway/internal/domain/errors"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success          bool             `json:"success"`
	Error            string           `json:"error"`
	ErrorDescription ErrorDescription `json:"error_description"`
	Metadata         ResponseMetadata `json:"metadata"`
}

// ErrorDescription represents the error details
type ErrorDescription struct {
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error creates an error response. Only the code, message and details are
// exposed; the wrapped cause stays server-side.
func Error(appErr errors.AppError, requestID string) events.APIGatewayProxyResponse {
	statusCode := appErr.StatusCode
	if statusCode == 0 {
		statusCode = http.StatusInternalServerError
	}

	response := ErrorResponse{
		Success: false,
		Error:   appErr.Code,
		ErrorDescription: ErrorDescription{
			Message: appErr.Message,
			Details: appErr.Details,
		},
		Metadata: ResponseMetadata{
			Version:   "1.0",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			RequestID: requestID,
		},
	}

	body, err := json.Marshal(response)
	if err != nil {
		// Fallback for JSON marshaling errors
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Body:       `{"success":false,"error":"INTERNAL_ERROR","error_description":{"message":"Failed to marshal error response"}}`,
			Headers:    DefaultHeaders(),
		}
	}

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Body:       string(body),
		Headers:    DefaultHeaders(),
	}
}

// BadRequest creates a bad request error response
func BadRequest(message string, requestID string) events.APIGatewayProxyResponse {
	return Error(errors.NewInvalidRequestError(message), requestID)
}

// NotFound creates a response for an unknown route
func NotFound(message string, requestID string) events.APIGatewayProxyResponse {
	appErr := errors.NewInvalidRequestError(message)
	appErr.StatusCode = http.StatusNotFound
	return Error(appErr, requestID)
}

// MethodNotAllowed creates a response for a known route called with the wrong method
func MethodNotAllowed(message string, requestID string) events.APIGatewayProxyResponse {
	appErr := errors.NewInvalidRequestError(message)
	appErr.StatusCode = http.StatusMethodNotAllowed
	return Error(appErr, requestID)
}

// InternalError creates a generic internal error response
func InternalError(requestID string) events.APIGatewayProxyResponse {
	return Error(errors.NewInternalError("Internal server error", nil), requestID)
}
