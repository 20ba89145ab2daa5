package bedrock

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// ErrEmptyGeneration is returned when the model answered without any text block.
var ErrEmptyGeneration = errors.New("no text content in model response")

// ProviderError is a failed InvokeModel call as reported by Bedrock.
type ProviderError struct {
	Code    string
	Message string
	Err     error
}

func newProviderError(apiErr smithy.APIError) *ProviderError {
	code := apiErr.ErrorCode()
	if code == "" {
		code = "Unknown"
	}
	msg := apiErr.ErrorMessage()
	if msg == "" {
		msg = apiErr.Error()
	}
	return &ProviderError{Code: code, Message: msg, Err: apiErr}
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("bedrock: %s - %s", e.Code, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ResponseParseError means the response body was not the expected JSON.
type ResponseParseError struct {
	Err error
}

func (e *ResponseParseError) Error() string {
	return "parse model response: " + e.Err.Error()
}

func (e *ResponseParseError) Unwrap() error {
	return e.Err
}
