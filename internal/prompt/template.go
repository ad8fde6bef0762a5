// Package prompt renders the instruction template, the conversation
// history, and the newest user utterance into a single completion payload.
package prompt

import (
	"errors"
	"fmt"
	"strings"
)

// Slot placeholders the instruction template must contain.
const (
	SlotHistory = "{history}"
	SlotInput   = "{input}"
)

// DefaultTemplate is the support-agent instruction template used when the
// configuration does not provide one.
const DefaultTemplate = `You are a helpful, friendly customer support agent for a tech company.
Your role is to:
- Answer questions about products and services
- Help with troubleshooting
- Be empathetic and professional
- Keep responses concise but helpful

{history}{input}`

// Sentinel errors for template parsing.
var (
	ErrMissingSlot   = errors.New("prompt: template is missing a required slot")
	ErrDuplicateSlot = errors.New("prompt: template slot appears more than once")
)

// Template is a validated instruction template with named slots for the
// serialized history and the new user utterance.
type Template struct {
	text string
}

// ParseTemplate validates that the template contains each required slot
// exactly once.
func ParseTemplate(text string) (Template, error) {
	var errs []error
	for _, slot := range []string{SlotHistory, SlotInput} {
		switch strings.Count(text, slot) {
		case 0:
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissingSlot, slot))
		case 1:
			// ok
		default:
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateSlot, slot))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return Template{}, err
	}
	return Template{text: text}, nil
}

// MustParseTemplate is ParseTemplate that panics on error. For use with
// compile-time constant templates.
func MustParseTemplate(text string) Template {
	tpl, err := ParseTemplate(text)
	if err != nil {
		panic(err)
	}
	return tpl
}

// render substitutes the slot contents into the template text.
func (t Template) render(history, input string) string {
	out := strings.Replace(t.text, SlotHistory, history, 1)
	return strings.Replace(out, SlotInput, input, 1)
}

// Text returns the raw template text.
func (t Template) Text() string {
	return t.text
}
