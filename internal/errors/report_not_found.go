package errors

import "net/http"

var ErrReportNotFound = &Exception{
	Message:    "no duration report recorded",
	StatusCode: http.StatusNotFound,
}
