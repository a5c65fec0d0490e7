package model

// ErrorResponse is the envelope for every error the API returns. The
// message is safe for end users; internal detail stays in the logs.
type ErrorResponse struct {
	Error string `json:"error"`
}
