package host

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
)

// runLoop drives the tool-calling conversation with the model. Each round the
// model either answers free-text (done) or emits a `tool:<name> {json}`
// directive; the directive's arguments are validated and the tool invoked,
// and the observation is fed back for the next round. Validation and tool
// failures become observations too, so the model can correct itself. The
// loop is bounded; on exhaustion a stop notice is returned instead of the
// dangling directive, so raw tool syntax never reaches the user.
func (d *Dispatcher) runLoop(ctx context.Context, contextDocs []string, userMessage string) (string, error) {
	prompt := d.buildPrompt(contextDocs, userMessage)

	var completion string
	for i := 0; i < d.maxIters; i++ {
		var err error
		completion, err = d.model.Generate(ctx, prompt)
		if err != nil {
			return "", fmt.Errorf("model generate: %w", err)
		}

		name, rawArgs, ok := parseToolDirective(completion)
		if !ok {
			return strings.TrimSpace(completion), nil
		}

		observation := d.executeTool(ctx, name, rawArgs)
		log.Printf("dispatcher: tool %s observation: %s", name, truncate(observation, 200))
		prompt += fmt.Sprintf("\n\nObservation from tool %s:\n%s\n\nContinue. Answer the user directly unless another tool call is required.\n", name, observation)
	}

	log.Printf("dispatcher: tool loop exhausted after %d iterations", d.maxIters)
	return fmt.Sprintf("I stopped after %d tool calls without reaching a final answer. Please rephrase or narrow the question.", d.maxIters), nil
}

// buildPrompt assembles the system prompt, the rendered tool specs, the
// retrieved context snippets (not the full history), and the user message.
func (d *Dispatcher) buildPrompt(contextDocs []string, userMessage string) string {
	var sb strings.Builder
	sb.Grow(4096)

	sb.WriteString(d.systemPrompt)

	if tools := d.renderTools(); tools != "" {
		sb.WriteString("\n\n")
		sb.WriteString(tools)
	}

	sb.WriteString("\n\nRelevant conversation context:\n")
	if len(contextDocs) == 0 {
		sb.WriteString("(none)\n")
	} else {
		for i, doc := range contextDocs {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, doc))
		}
	}

	sb.WriteString("\nCurrent user message:\n")
	sb.WriteString(strings.TrimSpace(userMessage))
	sb.WriteString("\n\nCompose the best possible assistant reply.\n")

	return sb.String()
}

// renderTools formats the catalog's tool specs into a prompt-friendly block.
func (d *Dispatcher) renderTools() string {
	specs := d.catalog.Specs()
	if len(specs) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Available tools:\n")
	for _, ts := range specs {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", ts.Name, ts.Description))
		if len(ts.ArgsSchema.Properties) > 0 {
			if schemaJSON, err := json.MarshalIndent(ts.ArgsSchema, "  ", "  "); err == nil {
				sb.WriteString("  Arguments: ")
				sb.Write(schemaJSON)
				sb.WriteString("\n")
			}
		}
	}
	sb.WriteString("Invoke a tool by replying with a single line: `tool:<name> <json arguments>`\n")
	return sb.String()
}

// executeTool validates and runs one directive, returning the observation as
// a JSON string. Failures never escape as errors; they are rendered in the
// same {"error": ...} shape remote tool failures use.
func (d *Dispatcher) executeTool(ctx context.Context, name, rawArgs string) string {
	tool, ok := d.catalog.Lookup(name)
	if !ok {
		return errorObservation(name, fmt.Sprintf("unknown tool: %s", name))
	}

	args := map[string]any{}
	if trimmed := strings.TrimSpace(rawArgs); trimmed != "" {
		if err := json.Unmarshal([]byte(trimmed), &args); err != nil {
			return errorObservation(name, fmt.Sprintf("arguments are not valid JSON: %v", err))
		}
	}

	validated, err := tool.Validator.Validate(args)
	if err != nil {
		return errorObservation(name, err.Error())
	}

	result := tool.Invoke(ctx, validated)
	payload, err := json.Marshal(result)
	if err != nil {
		return errorObservation(name, fmt.Sprintf("tool result is not serializable: %v", err))
	}
	return string(payload)
}

func errorObservation(tool, msg string) string {
	payload, _ := json.Marshal(map[string]string{"tool": tool, "error": msg})
	return string(payload)
}

// parseToolDirective scans a completion for the first `tool:<name> <json>`
// line. Models often wrap directives in code fences; those are stripped.
func parseToolDirective(completion string) (name, rawArgs string, ok bool) {
	for _, line := range strings.Split(completion, "\n") {
		line = strings.TrimSpace(strings.Trim(strings.TrimSpace(line), "`"))
		if !strings.HasPrefix(strings.ToLower(line), "tool:") {
			continue
		}
		payload := strings.TrimSpace(line[len("tool:"):])
		if payload == "" {
			return "", "", false
		}
		parts := strings.Fields(payload)
		name = parts[0]
		if len(payload) > len(name) {
			rawArgs = strings.TrimSpace(payload[len(name):])
		}
		return name, rawArgs, true
	}
	return "", "", false
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max > 3 {
		return s[:max-3] + "..."
	}
	return s[:max]
}
