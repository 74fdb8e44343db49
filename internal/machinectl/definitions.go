package machinectl

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadDefinitions reads and checks a definitions file.
func LoadDefinitions(path string) (*DefinitionsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definitions: %w", err)
	}

	var f DefinitionsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse definitions: %w", err)
	}
	if f.APIURL == "" {
		f.APIURL = "http://localhost:8090"
	}
	if f.APIKey == "" {
		f.APIKey = os.Getenv("MACHINES_API_KEY")
	}

	seen := make(map[int64]bool, len(f.Definitions))
	for _, d := range f.Definitions {
		if d.ChallengeID <= 0 {
			return nil, fmt.Errorf("definition without a valid challenge_id")
		}
		if seen[d.ChallengeID] {
			return nil, fmt.Errorf("challenge %d defined twice", d.ChallengeID)
		}
		seen[d.ChallengeID] = true
	}
	return &f, nil
}

// ApplyResult counts what Apply did.
type ApplyResult struct {
	Created int
	Updated int
}

// ApplyDefinitions creates missing definitions and updates existing ones.
// The server only re-registers a task definition whose config changed.
func ApplyDefinitions(ctx context.Context, c *Client, f *DefinitionsFile) (ApplyResult, error) {
	var res ApplyResult
	for _, d := range f.Definitions {
		cfg, err := d.Config()
		if err != nil {
			return res, err
		}
		path := fmt.Sprintf("/api/v1/definitions/%d", d.ChallengeID)

		err = c.do(ctx, http.MethodGet, path, nil, nil)
		switch {
		case IsNotFound(err):
			if err := c.do(ctx, http.MethodPost, "/api/v1/definitions", map[string]any{
				"challenge_id":     d.ChallengeID,
				"duration_minutes": d.DurationMinutes,
				"config":           cfg,
			}, nil); err != nil {
				return res, fmt.Errorf("create definition %d: %w", d.ChallengeID, err)
			}
			res.Created++
			fmt.Printf("  created definition for challenge %d\n", d.ChallengeID)
		case err != nil:
			return res, fmt.Errorf("get definition %d: %w", d.ChallengeID, err)
		default:
			body := map[string]any{"config": cfg}
			if d.DurationMinutes > 0 {
				body["duration_minutes"] = d.DurationMinutes
			}
			if err := c.do(ctx, http.MethodPut, path, body, nil); err != nil {
				return res, fmt.Errorf("update definition %d: %w", d.ChallengeID, err)
			}
			res.Updated++
			fmt.Printf("  updated definition for challenge %d\n", d.ChallengeID)
		}
	}
	return res, nil
}

// DeleteDefinition removes a challenge's definition, stopping its machines.
func DeleteDefinition(ctx context.Context, c *Client, challengeID int64) error {
	path := fmt.Sprintf("/api/v1/definitions/%d", challengeID)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("delete definition %d: %w", challengeID, err)
	}
	return nil
}
