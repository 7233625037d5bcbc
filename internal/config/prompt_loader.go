package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// promptRegistry holds system prompts loaded from files, keyed by operation.
// The watcher replaces entries while requests read them.
type promptRegistry struct {
	mu      sync.RWMutex
	prompts map[string]string
}

var systemPrompts = &promptRegistry{prompts: make(map[string]string)}

func (r *promptRegistry) get(operation string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.prompts[operation]
}

func (r *promptRegistry) set(operation, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts[operation] = content
}

func (r *promptRegistry) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts = make(map[string]string)
}

// PromptFiles returns the configured system prompt files by operation
func (c *Config) PromptFiles() map[string]string {
	files := make(map[string]string)
	for name, op := range c.operations() {
		if op.SystemPromptFile != "" {
			files[name] = op.SystemPromptFile
		}
	}
	return files
}

// loadSystemPrompts validates and loads every configured system prompt file
func (c *Config) loadSystemPrompts() error {
	files := c.PromptFiles()
	if len(files) == 0 {
		log.Println("[CONFIG] No custom system prompts configured - using built-in defaults")
		return nil
	}

	if err := validatePromptFiles(files); err != nil {
		return err
	}

	systemPrompts.reset()
	for _, name := range sortedKeys(files) {
		content, err := loadPromptFromFile(files[name], name)
		if err != nil {
			return err
		}
		systemPrompts.set(name, content)
	}
	log.Printf("[CONFIG] Total custom system prompts loaded: %d", len(files))
	return nil
}

// ReloadSystemPrompt re-reads the prompt file of one operation. The previous
// content stays in place when the file is missing or empty.
func (c *Config) ReloadSystemPrompt(operation string) error {
	path, ok := c.PromptFiles()[operation]
	if !ok {
		return fmt.Errorf("no system prompt file configured for %s", operation)
	}
	content, err := loadPromptFromFile(path, operation)
	if err != nil {
		return err
	}
	systemPrompts.set(operation, content)
	return nil
}

func loadPromptFromFile(filePath, operation string) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s prompt file '%s': %w", operation, filePath, err)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s prompt file not found: %s", operation, absPath)
		}
		return "", fmt.Errorf("failed to read %s prompt file '%s': %w", operation, absPath, err)
	}

	trimmed := strings.TrimSpace(string(content))
	if trimmed == "" {
		return "", fmt.Errorf("%s prompt file '%s' is empty", operation, absPath)
	}

	log.Printf("[CONFIG] Successfully loaded %s system prompt from file: %s (%d characters)",
		operation, absPath, len(trimmed))
	return trimmed, nil
}

// validatePromptFiles reports every missing file at once
func validatePromptFiles(files map[string]string) error {
	var problems []string
	for _, name := range sortedKeys(files) {
		absPath, err := filepath.Abs(files[name])
		if err != nil {
			problems = append(problems, fmt.Sprintf("invalid path for %s prompt: %s", name, files[name]))
			continue
		}
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			problems = append(problems, fmt.Sprintf("%s prompt file not found: %s", name, absPath))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(problems, "\n"))
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
