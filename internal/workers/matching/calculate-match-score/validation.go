package calculatematchscore

import "jobmatch-workers/internal/common/validation"

// GetInputSchema allows additional properties: Zeebe hands the worker every
// variable in scope, not just the ones it reads.
func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"jobId", "candidateId"},
		Properties: map[string]validation.Property{
			"jobId": {
				Type:        "string",
				Description: "Job posting identifier",
				MinLength:   validation.IntPtr(1),
				MaxLength:   validation.IntPtr(128),
			},
			"candidateId": {
				Type:        "string",
				Description: "Candidate profile identifier",
				MinLength:   validation.IntPtr(1),
				MaxLength:   validation.IntPtr(128),
			},
		},
		AdditionalProperties: true,
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"jobId", "candidateId", "matchScore", "breakdown", "explanation"},
		Properties: map[string]validation.Property{
			"jobId":       {Type: "string"},
			"candidateId": {Type: "string"},
			"matchScore": {
				Type:        "integer",
				Description: "Overall match score",
				Minimum:     floatPtr(0),
				Maximum:     floatPtr(100),
			},
			"breakdown": {
				Type:        "object",
				Description: "Per-factor sub-scores",
			},
			"explanation": {
				Type:        "array",
				Description: "Strongest factors in plain language",
				MaxItems:    validation.IntPtr(3),
				Items:       &validation.Property{Type: "string"},
			},
		},
		AdditionalProperties: false,
	}
}

func floatPtr(f float64) *float64 {
	return &f
}
