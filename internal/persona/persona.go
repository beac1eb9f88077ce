// Package persona phrases timer outcomes in Airth's voice.
package persona

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/xvierd/tec-office/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed airth.yaml
var defaultPersona []byte

// Persona is the voice definition loaded from YAML.
type Persona struct {
	Name           string    `yaml:"name"`
	Tone           string    `yaml:"tone"`
	SpeechPatterns []string  `yaml:"speech_patterns"`
	Interests      []string  `yaml:"interests,omitempty"`
	Responses      Responses `yaml:"responses"`

	pick func(n int) int
}

// Responses holds the templates per outcome. Templates may use {opener},
// {message} and {name}.
type Responses struct {
	Success      []string `yaml:"success"`
	Failure      []string `yaml:"failure"`
	Unrecognized []string `yaml:"unrecognized,omitempty"`
	Complete     []string `yaml:"complete,omitempty"`
}

// Default returns the embedded Airth persona.
func Default() *Persona {
	p, err := Parse(defaultPersona)
	if err != nil {
		panic(fmt.Sprintf("persona: embedded default is invalid: %v", err))
	}
	return p
}

// Parse decodes and validates a persona payload.
func Parse(data []byte) (*Persona, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("persona: payload is empty")
	}
	var p Persona
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("persona: decode: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Load reads a persona file. An empty path yields the default persona.
func Load(path string) (*Persona, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("persona: read %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("persona: %s: %w", path, err)
	}
	return p, nil
}

// Validate checks that the persona can phrase both outcomes.
func (p *Persona) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("persona: name is required")
	}
	if len(p.Responses.Success) == 0 || len(p.Responses.Failure) == 0 {
		return errors.New("persona: success and failure responses are required")
	}
	return nil
}

// WithPicker replaces the random template choice; used by tests.
func (p *Persona) WithPicker(pick func(n int) int) *Persona {
	cp := *p
	cp.pick = pick
	return &cp
}

// Respond phrases a command result.
func (p *Persona) Respond(result domain.Result) string {
	var templates []string
	switch {
	case result.Success:
		templates = p.Responses.Success
	case result.Action == "unrecognized" && len(p.Responses.Unrecognized) > 0:
		templates = p.Responses.Unrecognized
	default:
		templates = p.Responses.Failure
	}
	return p.render(p.choose(templates), result.Message, "")
}

// Announce phrases a finished timer.
func (p *Persona) Announce(name string) string {
	if len(p.Responses.Complete) == 0 {
		return fmt.Sprintf("%s is done.", name)
	}
	return p.render(p.choose(p.Responses.Complete), "", name)
}

func (p *Persona) choose(options []string) string {
	if len(options) == 0 {
		return "{message}"
	}
	pick := p.pick
	if pick == nil {
		pick = rand.IntN
	}
	return options[pick(len(options))]
}

func (p *Persona) render(template, message, name string) string {
	opener := ""
	if len(p.SpeechPatterns) > 0 {
		opener = p.choose(p.SpeechPatterns)
	}
	r := strings.NewReplacer("{opener}", opener, "{message}", message, "{name}", name)
	return strings.Join(strings.Fields(r.Replace(template)), " ")
}
