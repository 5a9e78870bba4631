package http

// LookupRequest is the inbound payload for a product lookup.
type LookupRequest struct {
	ProductName string `json:"productName"`
}

// ErrorResponse is the shared error envelope for request-boundary
// failures. Pipeline failures never surface here; they degrade into
// null fields on the lookup result instead.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Error   string `json:"error"`
}
