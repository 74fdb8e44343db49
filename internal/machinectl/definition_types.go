package machinectl

import (
	"encoding/json"
	"fmt"

	"github.com/edvin/machines/internal/model"
)

// DefinitionsFile is the YAML document `machinectl definitions apply` reads.
type DefinitionsFile struct {
	APIURL      string          `yaml:"api_url"`
	APIKey      string          `yaml:"api_key"`
	Definitions []DefinitionDef `yaml:"definitions"`
}

type DefinitionDef struct {
	ChallengeID     int64          `yaml:"challenge_id"`
	DurationMinutes int            `yaml:"duration_minutes"`
	LaunchType      string         `yaml:"launch_type"`
	TaskDefinition  map[string]any `yaml:"task_definition"`
	Networks        model.Networks `yaml:"networks"`
}

// Config renders the definition as the JSON config the API stores. A
// definition without a task definition has no machine and yields "".
func (d DefinitionDef) Config() (string, error) {
	if len(d.TaskDefinition) == 0 {
		return "", nil
	}
	cfg := struct {
		LaunchType     string         `json:"launchType,omitempty"`
		TaskDefinition map[string]any `json:"taskDefinition"`
		Networks       model.Networks `json:"networks"`
	}{d.LaunchType, d.TaskDefinition, d.Networks}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode config for challenge %d: %w", d.ChallengeID, err)
	}
	return string(data), nil
}
