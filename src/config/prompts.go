package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadPrompt reads a named prompt from a YAML file mapping prompt ids to
// text. A missing file is not an error; the caller falls back to its
// built-in default. A present file without the requested id is.
func LoadPrompt(path, id string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read prompt file: %w", err)
	}

	var prompts map[string]string
	if err := yaml.Unmarshal(data, &prompts); err != nil {
		return "", fmt.Errorf("parse prompt file %s: %w", path, err)
	}
	prompt, ok := prompts[id]
	if !ok {
		return "", fmt.Errorf("prompt %q not found in %s", id, path)
	}
	return prompt, nil
}
