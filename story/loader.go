// Package story loads declarative story files into the action model. YAML
// and JSON both parse (yaml.v3 accepts JSON); each record must name exactly
// one action kind, the rest of the record is the flat parameter bag, and
// store_as is lifted out. Unknown kinds load fine and fail at execution
// with the unsupported-kind diagnostic.
package story

import (
	"fmt"
	"os"

	"github.com/goliatone/go-errors"
	"gopkg.in/yaml.v3"

	scenario "github.com/goliatone/go-scenario"
)

type rawStory struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Setup       []map[string]any `yaml:"setup"`
	Steps       []map[string]any `yaml:"steps"`
	Cleanup     []map[string]any `yaml:"cleanup"`
}

// Parse decodes a story document.
func Parse(data []byte) (scenario.Story, error) {
	var raw rawStory
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return scenario.Story{}, errors.Wrap(err, errors.CategoryBadInput, "story parse failed").
			WithTextCode("STORY_PARSE_FAILED")
	}
	if raw.Name == "" {
		return scenario.Story{}, errors.New("story requires a name", errors.CategoryValidation).
			WithTextCode("STORY_NAME_MISSING")
	}

	st := scenario.Story{Name: raw.Name, Description: raw.Description}
	var err error
	if st.Setup, err = convertActions("setup", raw.Setup); err != nil {
		return scenario.Story{}, err
	}
	if st.Steps, err = convertActions("steps", raw.Steps); err != nil {
		return scenario.Story{}, err
	}
	if st.Cleanup, err = convertActions("cleanup", raw.Cleanup); err != nil {
		return scenario.Story{}, err
	}
	return st, nil
}

// Load reads and parses a story file.
func Load(path string) (scenario.Story, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return scenario.Story{}, errors.Wrap(err, errors.CategoryBadInput, "story file unreadable").
			WithTextCode("STORY_FILE_UNREADABLE")
	}
	return Parse(data)
}

func convertActions(phase string, records []map[string]any) ([]scenario.Action, error) {
	if len(records) == 0 {
		return nil, nil
	}
	actions := make([]scenario.Action, 0, len(records))
	for i, record := range records {
		act, err := convertAction(record)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryValidation,
				fmt.Sprintf("%s[%d] is not a valid action", phase, i)).
				WithTextCode("STORY_ACTION_INVALID")
		}
		actions = append(actions, act)
	}
	return actions, nil
}

func convertAction(record map[string]any) (scenario.Action, error) {
	kindRaw, ok := record["action"]
	if !ok {
		return scenario.Action{}, fmt.Errorf("record has no action key")
	}
	kind, ok := kindRaw.(string)
	if !ok || kind == "" {
		return scenario.Action{}, fmt.Errorf("action key must be a non-empty string, got %v", kindRaw)
	}

	params := make(map[string]any, len(record))
	for k, v := range record {
		if k == "action" || k == "store_as" {
			continue
		}
		params[k] = v
	}

	act := scenario.NewAction(scenario.Kind(kind), params)
	if storeAs, ok := record["store_as"].(string); ok {
		act = act.WithStore(storeAs)
	}
	return act, nil
}
