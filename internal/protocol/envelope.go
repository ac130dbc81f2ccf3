package protocol

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/gcmaps/gcm-server-go/internal/apperr"
)

// Request is the universal inbound envelope. IDs are generated by the
// client and echoed verbatim on the response so callers can correlate
// concurrent in-flight requests on one connection.
type Request struct {
	ID      string          `json:"id"`
	Type    Op              `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Token   string          `json:"token,omitempty"`
	UserID  int64           `json:"userId,omitempty"`
}

// NewRequest builds a client-side request with a fresh random ID.
func NewRequest(op Op, payload any, token string) (*Request, error) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = data
	}
	return &Request{
		ID:      uuid.NewString(),
		Type:    op,
		Payload: raw,
		Token:   token,
	}, nil
}

// Authenticated reports whether the request carries a session token.
// Carrying one does not make it valid; handlers re-validate per request.
func (r *Request) Authenticated() bool {
	return r.Token != ""
}

// Bind decodes the request payload into dst.
func (r *Request) Bind(dst any) error {
	if len(r.Payload) == 0 {
		return apperr.Validation("request payload required")
	}
	if err := json.Unmarshal(r.Payload, dst); err != nil {
		return apperr.Validation("malformed request payload").WithCause(err)
	}
	return nil
}

// ErrorInfo is the failure half of the response union.
type ErrorInfo struct {
	Code    apperr.Code `json:"code"`
	Message string      `json:"message"`
}

// Response is the universal outbound envelope. Exactly one of Payload
// and Error is populated, discriminated by OK.
type Response struct {
	ID      string     `json:"id"`
	OK      bool       `json:"ok"`
	Payload any        `json:"payload,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// OKResponse builds a success response correlated to req.
func OKResponse(req *Request, payload any) *Response {
	return &Response{ID: req.ID, OK: true, Payload: payload}
}

// ErrResponse builds a failure response correlated to req. Non-AppError
// causes collapse to INTERNAL_ERROR so internals never leak to clients.
func ErrResponse(req *Request, err error) *Response {
	if appErr, ok := apperr.As(err); ok {
		return &Response{
			ID:    req.ID,
			Error: &ErrorInfo{Code: appErr.Code, Message: appErr.Message},
		}
	}
	return &Response{
		ID:    req.ID,
		Error: &ErrorInfo{Code: apperr.CodeInternal, Message: "Internal server error"},
	}
}

// Event is an unsolicited server-to-client frame (push notifications).
// It shares the Response shape on the wire but carries no request ID.
type Event struct {
	Type string          `json:"event"`
	Data json.RawMessage `json:"data"`
}
