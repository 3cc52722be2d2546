package crosschex

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	apiVersion = "1.0"

	// timestampLayout renders UTC as +00:00 rather than Z.
	timestampLayout = "2006-01-02T15:04:05.000-07:00"
)

type header struct {
	NameSpace  string `json:"nameSpace"`
	NameAction string `json:"nameAction"`
	Version    string `json:"version"`
	RequestID  string `json:"requestId"`
	Timestamp  string `json:"timestamp"`
}

func (h header) action() string {
	return h.NameSpace + "/" + h.NameAction
}

type authorize struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

type request struct {
	Header    header     `json:"header"`
	Authorize *authorize `json:"authorize,omitempty"`
	Payload   any        `json:"payload"`
}

type response struct {
	Header  header          `json:"header"`
	Payload json.RawMessage `json:"payload"`
}

func (r response) isException() bool {
	return strings.EqualFold(r.Header.NameAction, "Exception")
}

type exceptionPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (c *Client) newRequest(nameSpace, nameAction, token string, payload any) request {
	req := request{
		Header: header{
			NameSpace:  nameSpace,
			NameAction: nameAction,
			Version:    apiVersion,
			RequestID:  uuid.NewString(),
			Timestamp:  FormatTime(c.now()),
		},
		Payload: payload,
	}
	if token != "" {
		req.Authorize = &authorize{Type: "token", Token: token}
	}
	return req
}

// FormatTime renders t the way the provider expects it in envelopes and
// record queries.
func FormatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
