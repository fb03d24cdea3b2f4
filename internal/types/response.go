package types

// Response is the generic acknowledgement body.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ErrorBody documents the JSON written by api.ErrorResponse.
type ErrorBody struct {
	Success   bool   `json:"success" example:"false"`
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}
