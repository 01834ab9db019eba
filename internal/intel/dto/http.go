package dto

// ErrorResponse is the standard error payload for API responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// TriggerRunResponse acknowledges an accepted pipeline run request.
type TriggerRunResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
