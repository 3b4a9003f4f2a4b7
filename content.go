package main

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode"

	"gopkg.in/yaml.v3"
)

//go:embed content/default.yaml
var defaultContentYAML []byte

// ErrInvalidContent is returned when sample content fails validation.
var ErrInvalidContent = errors.New("invalid content")

// Content is the sample data both exercises are built from.
type Content struct {
	Question string   `json:"question" yaml:"question"`
	Words    []string `json:"words" yaml:"words"`
	Pairs    []Pair   `json:"pairs" yaml:"pairs"`
}

// DefaultContent returns the embedded sample content.
func DefaultContent() *Content {
	c, err := ParseContent(defaultContentYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded content: %v", err))
	}
	return c
}

// ParseContent decodes and validates a YAML content document.
func ParseContent(data []byte) (*Content, error) {
	var c Content
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse content YAML: %w", err)
	}
	if err := c.Normalize(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadContentFile reads and validates a YAML content file.
func LoadContentFile(path string) (*Content, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content file: %w", err)
	}
	return ParseContent(data)
}

// Normalize upper-cases and trims words and labels, then validates the result.
func (c *Content) Normalize() error {
	c.Question = strings.TrimSpace(c.Question)

	if len(c.Words) == 0 {
		return fmt.Errorf("%w: no words", ErrInvalidContent)
	}
	for i, w := range c.Words {
		w = strings.ToUpper(strings.TrimSpace(w))
		if w == "" {
			return fmt.Errorf("%w: word %d is empty", ErrInvalidContent, i)
		}
		if strings.IndexFunc(w, unicode.IsSpace) >= 0 {
			return fmt.Errorf("%w: word %q contains spaces", ErrInvalidContent, w)
		}
		c.Words[i] = w
	}

	if len(c.Pairs) == 0 {
		return fmt.Errorf("%w: no pairs", ErrInvalidContent)
	}
	lefts := make(map[string]bool, len(c.Pairs))
	rights := make(map[string]bool, len(c.Pairs))
	for i := range c.Pairs {
		p := &c.Pairs[i]
		p.Left = strings.TrimSpace(p.Left)
		p.Right = strings.TrimSpace(p.Right)
		if p.Left == "" || p.Right == "" {
			return fmt.Errorf("%w: pair %d has an empty label", ErrInvalidContent, i)
		}
		if lefts[p.Left] {
			return fmt.Errorf("%w: duplicate left label %q", ErrInvalidContent, p.Left)
		}
		if rights[p.Right] {
			return fmt.Errorf("%w: duplicate right label %q", ErrInvalidContent, p.Right)
		}
		lefts[p.Left] = true
		rights[p.Right] = true
	}
	return nil
}

// ContentSource holds the content new sessions are created from.
type ContentSource struct {
	mu      sync.RWMutex
	current *Content
}

// NewContentSource creates a source serving c.
func NewContentSource(c *Content) *ContentSource {
	return &ContentSource{current: c}
}

// Get returns the current content. Callers must not modify it.
func (s *ContentSource) Get() *Content {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Set replaces the current content. Live sessions keep their snapshot.
func (s *ContentSource) Set(c *Content) {
	s.mu.Lock()
	s.current = c
	s.mu.Unlock()
}
