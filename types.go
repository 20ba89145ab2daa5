package bedrockproxy

// GenerateRequest is the body of POST /generate.
// Prompt is a pointer so a missing field can be told apart from "".
type GenerateRequest struct {
	Prompt *string `json:"prompt" binding:"required"`
}

// GenerateResponse carries the generated text of a successful call.
type GenerateResponse struct {
	Text string `json:"text"`
}

// HealthResponse is the fixed answer of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is returned for every non-2xx answer of the API.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
