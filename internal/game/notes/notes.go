// Package notes holds the free-text pads shown beside the trackers.
package notes

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// Pad is a single free-text note.
//
// All methods are safe for concurrent use.
type Pad struct {
	mu   sync.RWMutex
	text string

	// Injected after construction. nil = no-op.
	OnChange func(string)
}

// NewPad creates an empty Pad.
func NewPad() *Pad {
	return &Pad{}
}

// Text returns the current text.
func (p *Pad) Text() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.text
}

// Set replaces the text.
func (p *Pad) Set(text string) {
	p.mu.Lock()
	p.text = text
	p.mu.Unlock()
	if p.OnChange != nil {
		p.OnChange(text)
	}
}

// Append adds line to the end of the text on its own line.
func (p *Pad) Append(line string) {
	p.mu.Lock()
	switch {
	case p.text == "":
		p.text = line
	case strings.HasSuffix(p.text, "\n"):
		p.text += line
	default:
		p.text += "\n" + line
	}
	text := p.text
	p.mu.Unlock()
	if p.OnChange != nil {
		p.OnChange(text)
	}
}

// Clear empties the pad.
func (p *Pad) Clear() {
	p.Set("")
}

// ImportFile replaces the text with the contents of a text or markdown file.
func (p *Pad) ImportFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("importing %q: %w", path, err)
	}
	p.Set(string(data))
	return nil
}
