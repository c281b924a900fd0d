package httpclient

import (
	"fmt"
	"strings"
)

const maxSnippetBytes = 512

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	Snippet    string
}

func (e *StatusError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("http response status %d", e.StatusCode)
	}
	return fmt.Sprintf("http response status %d: %s", e.StatusCode, e.Snippet)
}

// CheckStatus returns a *StatusError for non-2xx responses.
func CheckStatus(resp Response) error {
	status := resp.StatusCode()
	if status >= 200 && status <= 299 {
		return nil
	}
	return &StatusError{StatusCode: status, Snippet: BodySnippet(resp.Body())}
}

// BodySnippet returns at most the first 512 bytes of body, trimmed.
func BodySnippet(body []byte) string {
	if len(body) > maxSnippetBytes {
		body = body[:maxSnippetBytes]
	}
	return strings.TrimSpace(string(body))
}
