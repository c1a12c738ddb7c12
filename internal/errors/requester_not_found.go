package errors

import "net/http"

var ErrRequesterNotFound = &Exception{
	Message:    "requester is not registered",
	StatusCode: http.StatusNotFound,
}
