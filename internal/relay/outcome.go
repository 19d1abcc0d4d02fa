package relay

import "net/http"

// Kind tags an Outcome.
type Kind int

const (
	KindSuccess Kind = iota
	KindClientError
	KindUpstreamError
	KindServerError
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindClientError:
		return "client_error"
	case KindUpstreamError:
		return "upstream_error"
	case KindServerError:
		return "server_error"
	default:
		return "unknown"
	}
}

// Outcome is the normalized result of one relay invocation. A nil Body means
// the response has no body at all.
type Outcome struct {
	Kind   Kind
	Status int
	Body   any
}

// ErrorBody is the JSON shape of every failure response.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// SuccessBody is the JSON shape of the webhook relays' success response.
type SuccessBody struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func Success(body any) Outcome {
	return Outcome{Kind: KindSuccess, Status: http.StatusOK, Body: body}
}

func ClientError(status int, message string) Outcome {
	return Outcome{Kind: KindClientError, Status: status, Body: ErrorBody{Error: message}}
}

func UpstreamError(message string) Outcome {
	return Outcome{Kind: KindUpstreamError, Status: http.StatusInternalServerError, Body: ErrorBody{Error: message}}
}

func ServerError(message, details string) Outcome {
	return Outcome{Kind: KindServerError, Status: http.StatusInternalServerError, Body: ErrorBody{Error: message, Details: details}}
}
