package suite

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bgricker/layoutguard/internal/slug"
	"gopkg.in/yaml.v3"
)

// Extensions lists the file extensions recognised as test definitions.
var Extensions = []string{".yaml", ".yml"}

// HasTestExtension reports whether path ends in a recognised test extension.
func HasTestExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// InvalidDefinitionError reports a test file that does not describe a valid test.
type InvalidDefinitionError struct {
	Path   string
	Field  string
	Reason string
}

func (e *InvalidDefinitionError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid test definition %q: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("invalid test definition %q: %s %s", e.Path, e.Field, e.Reason)
}

// Load reads and validates the test definition at path.
func Load(path string) (Test, error) {
	f, err := os.Open(path)
	if err != nil {
		return Test{}, fmt.Errorf("open test %q: %w", path, err)
	}
	defer f.Close()
	return Decode(f, path)
}

// Decode parses a test definition from r. displayPath is used in errors.
func Decode(r io.Reader, displayPath string) (Test, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var doc testDocument
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return Test{}, invalid(displayPath, "", "file is empty")
		}
		return Test{}, invalid(displayPath, "", err.Error())
	}

	name, ok := doc.Name.(string)
	if doc.Name == nil {
		return Test{}, invalid(displayPath, "name", "is required")
	}
	if !ok {
		return Test{}, invalid(displayPath, "name", "must be a string")
	}
	if strings.TrimSpace(name) == "" {
		return Test{}, invalid(displayPath, "name", "must not be empty")
	}
	if slug.Make(name) == "" {
		return Test{}, invalid(displayPath, "name", "must contain at least one letter or digit")
	}

	var selector string
	if doc.Selector != nil {
		s, ok := doc.Selector.(string)
		if !ok {
			return Test{}, invalid(displayPath, "selector", "must be a string")
		}
		selector = strings.TrimSpace(s)
	}

	if doc.Scenario.Kind == 0 {
		return Test{}, invalid(displayPath, "scenario", "is required")
	}
	if doc.Scenario.Kind != yaml.SequenceNode {
		return Test{}, invalid(displayPath, "scenario", "must be a list of steps")
	}
	var stepDocs []stepDocument
	if err := doc.Scenario.Decode(&stepDocs); err != nil {
		return Test{}, invalid(displayPath, "scenario", err.Error())
	}

	steps := make([]Step, 0, len(stepDocs))
	for idx, sd := range stepDocs {
		step, field, err := sd.toStep()
		if err != nil {
			return Test{}, invalid(displayPath, fmt.Sprintf("scenario[%d]%s", idx, field), err.Error())
		}
		steps = append(steps, step)
	}

	return Test{
		Name:     name,
		Selector: selector,
		Steps:    steps,
		Scenario: StepsScenario(steps),
	}, nil
}

func invalid(path, field, reason string) error {
	return &InvalidDefinitionError{Path: path, Field: field, Reason: reason}
}

type testDocument struct {
	Name     interface{} `yaml:"name"`
	Selector interface{} `yaml:"selector"`
	Scenario yaml.Node   `yaml:"scenario"`
}

type stepDocument struct {
	Goto    *string        `yaml:"goto"`
	Click   *string        `yaml:"click"`
	Hover   *string        `yaml:"hover"`
	Fill    *inputDocument `yaml:"fill"`
	Press   *keyDocument   `yaml:"press"`
	WaitFor *string        `yaml:"waitFor"`
	Wait    *string        `yaml:"wait"`
	Eval    *string        `yaml:"eval"`
}

type inputDocument struct {
	Selector string `yaml:"selector"`
	Value    string `yaml:"value"`
}

type keyDocument struct {
	Selector string `yaml:"selector"`
	Key      string `yaml:"key"`
}

// toStep converts the document into a Step. On error it also returns the
// offending field suffix, e.g. ".fill.selector".
func (d stepDocument) toStep() (Step, string, error) {
	var actions []string
	set := func(name string, present bool) {
		if present {
			actions = append(actions, name)
		}
	}
	set(ActionGoto, d.Goto != nil)
	set(ActionClick, d.Click != nil)
	set(ActionHover, d.Hover != nil)
	set(ActionFill, d.Fill != nil)
	set(ActionPress, d.Press != nil)
	set(ActionWaitFor, d.WaitFor != nil)
	set(ActionWait, d.Wait != nil)
	set(ActionEval, d.Eval != nil)

	switch len(actions) {
	case 0:
		return Step{}, "", errors.New("must define one action (goto, click, hover, fill, press, waitFor, wait, eval)")
	case 1:
	default:
		return Step{}, "", fmt.Errorf("defines more than one action: %s", strings.Join(actions, ", "))
	}

	action := actions[0]
	field := "." + action
	required := func(v string) error {
		if strings.TrimSpace(v) == "" {
			return errors.New("must not be empty")
		}
		return nil
	}

	switch action {
	case ActionGoto:
		return simpleStep(action, *d.Goto, field, required)
	case ActionClick:
		return simpleStep(action, *d.Click, field, required)
	case ActionHover:
		return simpleStep(action, *d.Hover, field, required)
	case ActionWaitFor:
		return simpleStep(action, *d.WaitFor, field, required)
	case ActionFill:
		if err := required(d.Fill.Selector); err != nil {
			return Step{}, field + ".selector", err
		}
		return Step{Action: action, Target: d.Fill.Selector, Value: d.Fill.Value}, "", nil
	case ActionPress:
		if err := required(d.Press.Selector); err != nil {
			return Step{}, field + ".selector", err
		}
		if err := required(d.Press.Key); err != nil {
			return Step{}, field + ".key", err
		}
		return Step{Action: action, Target: d.Press.Selector, Value: d.Press.Key}, "", nil
	case ActionWait:
		dur, err := time.ParseDuration(strings.TrimSpace(*d.Wait))
		if err != nil {
			return Step{}, field, fmt.Errorf("must be a duration such as 500ms: %w", err)
		}
		if dur < 0 {
			return Step{}, field, errors.New("must not be negative")
		}
		return Step{Action: action, Duration: dur}, "", nil
	case ActionEval:
		if err := required(*d.Eval); err != nil {
			return Step{}, field, err
		}
		return Step{Action: action, Value: *d.Eval}, "", nil
	}
	return Step{}, "", fmt.Errorf("unknown action %q", action)
}

func simpleStep(action, target, field string, check func(string) error) (Step, string, error) {
	if err := check(target); err != nil {
		return Step{}, field, err
	}
	return Step{Action: action, Target: strings.TrimSpace(target)}, "", nil
}
