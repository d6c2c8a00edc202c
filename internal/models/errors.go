package models

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is the defined absence outcome for existence checks and
// single-resource gets. It is not a failure: callers distinguish
// "definitely absent" from "the call failed" with errors.Is.
var ErrNotFound = errors.New("directory: not found")

// APIErrorBody is the error envelope the directory API embeds in JSON
// responses for business-level rejections.
type APIErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Errors  []struct {
		Domain  string `json:"domain"`
		Reason  string `json:"reason"`
		Message string `json:"message"`
	} `json:"errors"`
}

// DirectoryError is an application-level rejection from the directory API,
// carrying the envelope's code and message.
type DirectoryError struct {
	Code    int
	Message string
}

func (e *DirectoryError) Error() string {
	return fmt.Sprintf("directory API error: %s (code: %d)", e.Message, e.Code)
}

// IsNotFound reports whether the envelope code is the not-found status.
func (e *DirectoryError) IsNotFound() bool {
	return e.Code == http.StatusNotFound
}

// NewDirectoryError builds a DirectoryError from a decoded envelope.
func NewDirectoryError(body *APIErrorBody) *DirectoryError {
	return &DirectoryError{
		Code:    body.Code,
		Message: body.Message,
	}
}
