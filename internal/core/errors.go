package core

import (
	"errors"

	"github.com/flatluna/twinfx/internal/storage"
)

// Sentinel errors returned by Service operations. The web layer maps these
// to HTTP statuses; the formdata core itself never produces errors, so a
// malformed body surfaces here as ErrNotMultipart or ErrNoFilePart after
// the parse degrades to an empty form.
var (
	ErrNotMultipart      = errors.New("request body is not multipart/form-data")
	ErrNoFilePart        = errors.New("no file part in form")
	ErrInvalidFileFormat = errors.New("invalid file format")
	ErrFileTooLarge      = errors.New("file exceeds maximum size")
	ErrMissingField      = errors.New("required field is missing")
	ErrNotFound          = storage.ErrNotFound
)

// UserMessage is a client-safe description of an error with a support code.
type UserMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
}

// MapError converts a service error into a user-facing message.
// Unknown errors map to a generic message so internals never leak.
func MapError(err error) UserMessage {
	switch {
	case errors.Is(err, ErrNotMultipart):
		return UserMessage{
			Code:    "FORM001",
			Message: "The request is not a valid multipart form",
			Action:  "Send the upload as multipart/form-data with a boundary",
		}
	case errors.Is(err, ErrNoFilePart):
		return UserMessage{
			Code:    "FORM002",
			Message: "No file was found in the upload",
			Action:  "Attach the file under the expected field name",
		}
	case errors.Is(err, ErrInvalidFileFormat):
		return UserMessage{
			Code:    "FILE001",
			Message: "The file format is not accepted",
			Action:  "Upload a JPG, PNG, GIF, WEBP or PDF file",
		}
	case errors.Is(err, ErrFileTooLarge):
		return UserMessage{
			Code:    "FILE002",
			Message: "The file is too large",
			Action:  "Upload a smaller file",
		}
	case errors.Is(err, ErrMissingField):
		return UserMessage{
			Code:    "FORM003",
			Message: "A required field is missing",
		}
	case errors.Is(err, ErrNotFound):
		return UserMessage{
			Code:    "GEN404",
			Message: "The requested record was not found",
		}
	default:
		return UserMessage{
			Code:    "GEN001",
			Message: "Something went wrong processing the request",
			Action:  "Please try again",
		}
	}
}
