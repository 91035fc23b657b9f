package suite

import (
	"fmt"
	"strings"
	"time"

	"github.com/bgricker/layoutguard/internal/browser"
	"github.com/bgricker/layoutguard/internal/slug"
)

// Scenario drives a page into the state that should be captured.
type Scenario func(page browser.Page) error

// Test is a validated visual test definition. It is immutable once loaded.
type Test struct {
	Name string
	// Selector limits the capture to one element. Empty captures the full page.
	Selector string
	Steps    []Step
	Scenario Scenario
}

// Slug returns the artifact key for the test.
func (t Test) Slug() string {
	return slug.Make(t.Name)
}

// Entry pairs a test with the file it was loaded from.
type Entry struct {
	Path string
	Test Test
}

// Step actions understood in test files.
const (
	ActionGoto    = "goto"
	ActionClick   = "click"
	ActionHover   = "hover"
	ActionFill    = "fill"
	ActionPress   = "press"
	ActionWaitFor = "waitFor"
	ActionWait    = "wait"
	ActionEval    = "eval"
)

// Step is a single browser interaction.
type Step struct {
	Action   string
	Target   string
	Value    string
	Duration time.Duration
}

// Apply performs the step against page.
func (s Step) Apply(page browser.Page) error {
	switch s.Action {
	case ActionGoto:
		return page.Goto(s.Target)
	case ActionClick:
		return page.Click(s.Target)
	case ActionHover:
		return page.Hover(s.Target)
	case ActionFill:
		return page.Fill(s.Target, s.Value)
	case ActionPress:
		return page.Press(s.Target, s.Value)
	case ActionWaitFor:
		return page.WaitFor(s.Target)
	case ActionWait:
		return page.Wait(s.Duration)
	case ActionEval:
		return page.Evaluate(s.Value)
	default:
		return fmt.Errorf("unknown action %q", s.Action)
	}
}

func (s Step) String() string {
	switch s.Action {
	case ActionWait:
		return fmt.Sprintf("%s %s", s.Action, s.Duration)
	case ActionFill, ActionPress:
		return fmt.Sprintf("%s %s %q", s.Action, s.Target, s.Value)
	case ActionEval:
		return fmt.Sprintf("%s %s", s.Action, truncate(s.Value, 40))
	default:
		return fmt.Sprintf("%s %s", s.Action, s.Target)
	}
}

// StepsScenario runs steps in order and stops at the first failure.
func StepsScenario(steps []Step) Scenario {
	return func(page browser.Page) error {
		for i, step := range steps {
			if err := step.Apply(page); err != nil {
				return fmt.Errorf("step %d (%s): %w", i+1, step, err)
			}
		}
		return nil
	}
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
