package request

type CreateDefinition struct {
	ChallengeID     int64  `json:"challenge_id" validate:"required,gt=0"`
	DurationMinutes int    `json:"duration_minutes" validate:"omitempty,min=1,max=10080"`
	Config          string `json:"config"`
}

// UpdateDefinition leaves nil fields unchanged.
type UpdateDefinition struct {
	DurationMinutes *int    `json:"duration_minutes" validate:"omitempty,min=1,max=10080"`
	Config          *string `json:"config"`
}

type CreateAPIKey struct {
	Name   string   `json:"name" validate:"required,min=1,max=255"`
	Scopes []string `json:"scopes" validate:"omitempty,dive,oneof=machines admin"`
}
