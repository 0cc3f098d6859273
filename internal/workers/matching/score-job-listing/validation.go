package scorejoblisting

import "jobmatch-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"candidateId", "jobIds"},
		Properties: map[string]validation.Property{
			"candidateId": {
				Type:        "string",
				Description: "Candidate viewing the listing",
				MinLength:   validation.IntPtr(1),
				MaxLength:   validation.IntPtr(128),
			},
			"jobIds": {
				Type:        "array",
				Description: "Job postings on the rendered page",
				Items:       &validation.Property{Type: "string"},
			},
			"sortByMatchScore": {
				Type:        "boolean",
				Description: "Rank jobs by match score instead of listing order",
			},
		},
		AdditionalProperties: true,
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"evaluationId", "candidateId", "matches", "rankedJobIds", "requested", "scored", "omitted"},
		Properties: map[string]validation.Property{
			"evaluationId": {Type: "string", Description: "Unique ID of this evaluation"},
			"candidateId":  {Type: "string"},
			"matches": {
				Type:        "object",
				Description: "Match result per scored job ID",
			},
			"rankedJobIds": {
				Type:        "array",
				Description: "Scored job IDs in display order",
				Items:       &validation.Property{Type: "string"},
			},
			"requested": {Type: "integer"},
			"scored":    {Type: "integer"},
			"omitted":   {Type: "integer", Description: "Jobs that could not be scored"},
		},
		AdditionalProperties: false,
	}
}
