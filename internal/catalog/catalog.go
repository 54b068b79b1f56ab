// Package catalog defines the ordered questionnaire steps and the invariants
// of their chain.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/m3rciful/assetbot/internal/asset"
	"github.com/m3rciful/assetbot/internal/validate"
)

// StepID identifies a conversation state.
type StepID string

const (
	// Idle is the state before the flow starts and after every reset.
	Idle StepID = "idle"
	// Submitted is the implicit terminal state; sessions never rest in it.
	Submitted StepID = "submitted"

	Category       StepID = "category"
	Subcategory    StepID = "subcategory"
	Name           StepID = "name"
	Quantity       StepID = "quantity"
	Currency       StepID = "currency"
	EntryPrice     StepID = "entry_price"
	EntryDate      StepID = "entry_date"
	ExitDate       StepID = "exit_date"
	ExitPrice      StepID = "exit_price"
	Image          StepID = "image"
	RepeatDecision StepID = "repeat_decision"
	ContactName    StepID = "contact_name"
	ContactEmail   StepID = "contact_email"
	ContactPhone   StepID = "contact_phone"
)

// Step is an immutable questionnaire step.
type Step struct {
	ID    StepID
	Field asset.Field
	// Title is the short human name shown by /status.
	Title string
	// Prompt renders the question from the answers collected so far.
	Prompt func(a *asset.Answers) string
	// Options constrains replies to a fixed set; nil means free text.
	Options func(a *asset.Answers) []Option
	// Suggestions are quick replies for free-text steps.
	Suggestions []string
	// Validate parses free text, or post-checks the chosen option key.
	Validate func(raw string) (any, error)
	// Write stores an accepted value; nil means Answers.Set on Field.
	Write  func(a *asset.Answers, v any) error
	Next   StepID
	Prev   StepID
	Branch map[string]StepID
}

// OptionsFor returns the step's options for the given answers, or nil for free text.
func (s Step) OptionsFor(a *asset.Answers) []Option {
	if s.Options == nil {
		return nil
	}
	return s.Options(a)
}

// Resolve turns a raw reply into the value to store. Option steps check
// membership before anything else.
func (s Step) Resolve(a *asset.Answers, raw string) (any, error) {
	text := strings.TrimSpace(raw)
	if s.Options != nil {
		opt, ok := Match(s.Options(a), text)
		if !ok {
			return nil, validate.NotOption()
		}
		if s.Validate == nil {
			return opt.Key, nil
		}
		return s.Validate(opt.Key)
	}
	if s.Validate == nil {
		return text, nil
	}
	return s.Validate(text)
}

// Apply writes an accepted value into the answers.
func (s Step) Apply(a *asset.Answers, v any) error {
	if s.Write != nil {
		return s.Write(a, v)
	}
	return a.Set(s.Field, v)
}

// Catalog is the validated step chain.
type Catalog struct {
	steps map[StepID]Step
	order []StepID
	first StepID
}

// ErrBrokenChain is returned when the chain invariants do not hold.
var ErrBrokenChain = errors.New("catalog: broken chain")

// New builds a catalog and checks that the steps form one path from the
// first step to Submitted with exactly one predecessor per step.
func New(steps ...Step) (*Catalog, error) {
	c := &Catalog{steps: make(map[StepID]Step, len(steps))}
	for _, s := range steps {
		if s.ID == "" || s.ID == Idle || s.ID == Submitted {
			return nil, fmt.Errorf("%w: reserved or empty id %q", ErrBrokenChain, s.ID)
		}
		if _, dup := c.steps[s.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate step %q", ErrBrokenChain, s.ID)
		}
		if s.Prompt == nil {
			return nil, fmt.Errorf("%w: step %q has no prompt", ErrBrokenChain, s.ID)
		}
		if s.Options == nil && s.Validate == nil {
			return nil, fmt.Errorf("%w: free-text step %q has no validator", ErrBrokenChain, s.ID)
		}
		c.steps[s.ID] = s
		if s.Prev == Idle {
			if c.first != "" {
				return nil, fmt.Errorf("%w: steps %q and %q both start the chain", ErrBrokenChain, c.first, s.ID)
			}
			c.first = s.ID
		}
	}
	if c.first == "" {
		return nil, fmt.Errorf("%w: no first step", ErrBrokenChain)
	}

	seen := make(map[StepID]bool, len(c.steps))
	for cur := c.first; cur != Submitted; {
		if seen[cur] {
			return nil, fmt.Errorf("%w: cycle at %q", ErrBrokenChain, cur)
		}
		s, ok := c.steps[cur]
		if !ok {
			return nil, fmt.Errorf("%w: %q points to missing step", ErrBrokenChain, cur)
		}
		seen[cur] = true
		c.order = append(c.order, cur)
		if s.Next != Submitted {
			next, ok := c.steps[s.Next]
			if !ok {
				return nil, fmt.Errorf("%w: %q points to missing step %q", ErrBrokenChain, cur, s.Next)
			}
			if next.Prev != cur {
				return nil, fmt.Errorf("%w: %q follows %q but names %q as previous", ErrBrokenChain, s.Next, cur, next.Prev)
			}
		}
		cur = s.Next
	}
	if len(seen) != len(c.steps) {
		return nil, fmt.Errorf("%w: %d steps unreachable from %q", ErrBrokenChain, len(c.steps)-len(seen), c.first)
	}
	for _, s := range c.steps {
		for key, target := range s.Branch {
			if _, ok := c.steps[target]; !ok && target != Submitted {
				return nil, fmt.Errorf("%w: branch %q of %q points to missing step %q", ErrBrokenChain, key, s.ID, target)
			}
		}
	}
	return c, nil
}

// MustNew is New that panics on a broken chain.
func MustNew(steps ...Step) *Catalog {
	c, err := New(steps...)
	if err != nil {
		panic(err)
	}
	return c
}

// First returns the first step of the flow.
func (c *Catalog) First() StepID {
	return c.first
}

// Order returns step ids along the main path.
func (c *Catalog) Order() []StepID {
	return append([]StepID(nil), c.order...)
}

// Step returns the definition of id.
func (c *Catalog) Step(id StepID) (Step, bool) {
	s, ok := c.steps[id]
	return s, ok
}

// Contains reports whether id is a valid session state.
func (c *Catalog) Contains(id StepID) bool {
	if id == Idle {
		return true
	}
	_, ok := c.steps[id]
	return ok
}

// Prev returns the predecessor of id; Idle means back to the entry menu.
func (c *Catalog) Prev(id StepID) StepID {
	s, ok := c.steps[id]
	if !ok {
		return Idle
	}
	return s.Prev
}

// Next returns the step that follows id once value was accepted.
func (c *Catalog) Next(id StepID, value any) StepID {
	s, ok := c.steps[id]
	if !ok {
		return Idle
	}
	if key, isKey := value.(string); isKey {
		if target, branched := s.Branch[key]; branched {
			return target
		}
	}
	return s.Next
}

// Position returns the 1-based index of id on the main path, or 0.
func (c *Catalog) Position(id StepID) int {
	for i, s := range c.order {
		if s == id {
			return i + 1
		}
	}
	return 0
}
