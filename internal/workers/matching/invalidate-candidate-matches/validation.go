package invalidatecandidatematches

import "jobmatch-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"candidateId"},
		Properties: map[string]validation.Property{
			"candidateId": {
				Type:        "string",
				Description: "Candidate whose profile changed",
				MinLength:   validation.IntPtr(1),
				MaxLength:   validation.IntPtr(128),
			},
			"jobId": {
				Type:        "string",
				Description: "Restrict invalidation to a single job",
				MaxLength:   validation.IntPtr(128),
			},
		},
		AdditionalProperties: true,
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"candidateId", "invalidated"},
		Properties: map[string]validation.Property{
			"candidateId": {Type: "string"},
			"invalidated": {
				Type:        "integer",
				Description: "Number of cached results removed",
			},
		},
		AdditionalProperties: false,
	}
}
