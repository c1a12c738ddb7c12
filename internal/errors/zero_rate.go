package errors

import "net/http"

var ErrZeroRate = &Exception{
	Message:    "estimated rate may not be $0.00/hr; precision is two decimal points",
	StatusCode: http.StatusUnprocessableEntity,
}
