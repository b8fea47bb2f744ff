package agent

import (
	"fmt"
	"strings"
)

// Section is one structured block of the agent prompt. Sections render to
// markdown-style text inside the SWML AI verb: a heading, optional body,
// bullets, numbered steps and nested subsections.
type Section struct {
	Title       string
	Body        string
	Bullets     []string
	Steps       []string
	Subsections []Section
}

// render writes the section at the given heading depth (0 = top level).
func (s Section) render(sb *strings.Builder, depth int) {
	if s.Title != "" {
		sb.WriteString(strings.Repeat("#", depth+2))
		sb.WriteByte(' ')
		sb.WriteString(s.Title)
		sb.WriteByte('\n')
	}
	if s.Body != "" {
		sb.WriteString(s.Body)
		sb.WriteByte('\n')
	}
	for _, b := range s.Bullets {
		sb.WriteString("- ")
		sb.WriteString(b)
		sb.WriteByte('\n')
	}
	for i, step := range s.Steps {
		fmt.Fprintf(sb, "%d. %s\n", i+1, step)
	}
	for _, sub := range s.Subsections {
		sub.render(sb, depth+1)
	}
	sb.WriteByte('\n')
}

// Provider supplies prompt sections dynamically at render time.
// Implementations can derive sections from call global data, environment, etc.
type Provider interface {
	Sections(info *RenderInfo) ([]Section, error)
}

// ProviderFunc is a functional adapter allowing ordinary functions to be used
// as Providers.
type ProviderFunc func(*RenderInfo) ([]Section, error)

// Sections implements Provider.
func (f ProviderFunc) Sections(info *RenderInfo) ([]Section, error) { return f(info) }
