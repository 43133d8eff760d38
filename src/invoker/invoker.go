// Package invoker performs the HTTP call a tool spec describes: rendering the
// endpoint template, splitting validated arguments into path/query/body, and
// translating every failure into a value the agent loop can show the model.
package invoker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/itapia/agent-host/src/spec"
)

// ToolError is a failed invocation reported as data. It never escapes the
// invoker as a Go error: the model sees it as the tool's output.
type ToolError struct {
	ToolName string `json:"tool"`
	Message  string `json:"error"`
}

func (e ToolError) Error() string {
	return fmt.Sprintf("tool %s: %s", e.ToolName, e.Message)
}

// EndpointRenderError reports an endpoint placeholder with no matching
// argument. Callers receive it wrapped in a ToolError.
type EndpointRenderError struct {
	Endpoint    string
	Placeholder string
}

func (e *EndpointRenderError) Error() string {
	return fmt.Sprintf("endpoint %q: no argument for placeholder {%s}", e.Endpoint, e.Placeholder)
}

// Invoker issues tool calls. It is stateless and safe for concurrent use.
type Invoker struct {
	client *http.Client
}

// New creates an Invoker. A nil client gets a default with a 30s timeout.
func New(client *http.Client) *Invoker {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Invoker{client: client}
}

// Invoke performs the HTTP request described by the spec using validated
// arguments. bodyParam names the single structured argument carried as the
// JSON payload ("" when the tool has none). The result is either the decoded
// response body or a ToolError; invocation never retries on its own.
func (iv *Invoker) Invoke(ctx context.Context, ts spec.ToolSpec, bodyParam string, args map[string]any) any {
	var body any
	rest := make(map[string]any, len(args))
	for k, v := range args {
		if k == bodyParam {
			body = v
			continue
		}
		rest[k] = v
	}

	endpoint, err := renderEndpoint(ts.Endpoint, rest)
	if err != nil {
		return ToolError{ToolName: ts.Name, Message: err.Error()}
	}

	query := url.Values{}
	for k, v := range rest {
		if v == nil {
			continue
		}
		query.Set(k, stringifyQueryValue(v))
	}
	if encoded := query.Encode(); encoded != "" {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		endpoint += sep + encoded
	}

	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return ToolError{ToolName: ts.Name, Message: fmt.Sprintf("encode request body: %v", err)}
		}
		payload = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(ts.Method), endpoint, payload)
	if err != nil {
		return ToolError{ToolName: ts.Name, Message: fmt.Sprintf("build request: %v", err)}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := iv.client.Do(req)
	if err != nil {
		return ToolError{ToolName: ts.Name, Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return ToolError{ToolName: ts.Name, Message: fmt.Sprintf("read response: %v", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(raw))
		if msg == "" {
			msg = resp.Status
		}
		return ToolError{ToolName: ts.Name, Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, truncate(msg, 512))}
	}

	// Response shapes are provider-defined; pass them through as opaque
	// structured values.
	var result any
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return ToolError{ToolName: ts.Name, Message: fmt.Sprintf("decode response: %v", err)}
	}
	return result
}

// renderEndpoint substitutes every {name} placeholder with the string form of
// the matching argument and removes consumed arguments from args, so path
// parameters never leak into the query string.
func renderEndpoint(template string, args map[string]any) (string, error) {
	var sb strings.Builder
	sb.Grow(len(template))
	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open == -1 {
			sb.WriteString(rest)
			break
		}
		closing := strings.IndexByte(rest[open:], '}')
		if closing == -1 {
			sb.WriteString(rest)
			break
		}
		name := rest[open+1 : open+closing]
		val, ok := args[name]
		if !ok || val == nil {
			return "", &EndpointRenderError{Endpoint: template, Placeholder: name}
		}
		sb.WriteString(rest[:open])
		sb.WriteString(url.PathEscape(stringifyQueryValue(val)))
		delete(args, name)
		rest = rest[open+closing+1:]
	}
	return sb.String(), nil
}

func stringifyQueryValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	default:
		return fmt.Sprint(t)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
