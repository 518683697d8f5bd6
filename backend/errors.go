package backend

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rowguard/rowguard-go/headers"
)

// APIError captures structured error metadata from the backend. PostgREST
// bodies carry code/message/details/hint; the auth plane uses msg or
// error_description. All shapes collapse into this one type.
type APIError struct {
	Status    int
	Code      string
	Message   string
	Details   string
	Hint      string
	RequestID string
}

// Error implements the error interface.
func (e APIError) Error() string {
	code := e.Code
	if code == "" {
		code = fmt.Sprintf("HTTP %d", e.Status)
	}
	if e.Message == "" {
		return code
	}
	return fmt.Sprintf("%s: %s", code, e.Message)
}

func decodeAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(resp.Body)
	apiErr := APIError{
		Status:    resp.StatusCode,
		RequestID: resp.Header.Get(headers.RequestID),
	}
	if len(data) == 0 {
		apiErr.Message = resp.Status
		return apiErr
	}
	var payload struct {
		// PostgREST shape.
		Code    string `json:"code"`
		Message string `json:"message"`
		Details string `json:"details"`
		Hint    string `json:"hint"`
		// Auth plane shapes.
		Msg              string `json:"msg"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		apiErr.Message = strings.TrimSpace(string(data))
		return apiErr
	}
	apiErr.Code = payload.Code
	apiErr.Message = payload.Message
	apiErr.Details = payload.Details
	apiErr.Hint = payload.Hint
	if apiErr.Message == "" {
		apiErr.Message = payload.Msg
	}
	if apiErr.Message == "" {
		apiErr.Message = payload.ErrorDescription
	}
	if apiErr.Message == "" {
		apiErr.Message = resp.Status
	}
	return apiErr
}
