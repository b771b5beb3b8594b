// Package transport maps HTTP outcomes of the vendor APIs onto syncerr classes.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"plmsync.GO/core/syncerr"
)

const maxErrorBody = 4 << 10

// Check returns nil for 2xx and a classified error otherwise.
func Check(method, path string, resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	msg := Message(body)
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s %s: %w (%d)", method, path, syncerr.ErrAuthentication, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, path, syncerr.ErrNotFound)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("%s %s: %w (%d %s)", method, path, syncerr.ErrTransientIO, resp.StatusCode, msg)
	default:
		return fmt.Errorf("%s %s: %w", method, path, syncerr.Validation(msg))
	}
}

// Wrap classifies errors returned by http.Client.Do. Caller cancellation is not transient.
func Wrap(method, path string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%s %s: %w: %v", method, path, syncerr.ErrTransientIO, err)
}

// ReadBody reads and closes the response body.
func ReadBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// Message pulls a human readable error out of a vendor error payload.
func Message(body []byte) string {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"message", "Message", "error", "errors", "Errors"} {
			if v, ok := payload[key]; ok {
				return strings.TrimSpace(fmt.Sprint(v))
			}
		}
	}
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody]
	}
	return s
}
