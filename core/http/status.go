package http

import "strconv"

// Status is an HTTP status code with its reason phrase.
type Status struct {
	Code int
	Text string
}

func (s Status) String() string {
	return strconv.Itoa(s.Code) + " " + s.Text
}

var (
	StatusSwitchingProtocols  = Status{101, "Switching Protocols"}
	StatusOK                  = Status{200, "OK"}
	StatusCreated             = Status{201, "Created"}
	StatusAccepted            = Status{202, "Accepted"}
	StatusNoContent           = Status{204, "No Content"}
	StatusPartialContent      = Status{206, "Partial Content"}
	StatusMovedPermanently    = Status{301, "Moved Permanently"}
	StatusFound               = Status{302, "Found"}
	StatusTemporaryRedirect   = Status{307, "Temporary Redirect"}
	StatusPermanentRedirect   = Status{308, "Permanent Redirect"}
	StatusBadRequest          = Status{400, "Bad Request"}
	StatusUnauthorized        = Status{401, "Unauthorized"}
	StatusForbidden           = Status{403, "Forbidden"}
	StatusNotFound            = Status{404, "Not Found"}
	StatusMethodNotAllowed    = Status{405, "Method Not Allowed"}
	StatusRequestTooLarge     = Status{413, "Payload Too Large"}
	StatusTooManyRequests     = Status{429, "Too Many Requests"}
	StatusInternalServerError = Status{500, "Internal Server Error"}
	StatusNotImplemented      = Status{501, "Not Implemented"}
	StatusServiceUnavailable  = Status{503, "Service Unavailable"}
)
