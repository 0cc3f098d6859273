// internal/matching/weights.go
package matching

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidWeights = errors.New("INVALID_WEIGHTS")

const weightSumTolerance = 1e-6

// Weights sets how much each factor contributes to the total score.
type Weights struct {
	Skills      float64 `json:"skills" mapstructure:"skills" validate:"gt=0,lte=1"`
	TechStack   float64 `json:"techStack" mapstructure:"tech_stack" validate:"gt=0,lte=1"`
	Experience  float64 `json:"experience" mapstructure:"experience" validate:"gt=0,lte=1"`
	Location    float64 `json:"location" mapstructure:"location" validate:"gt=0,lte=1"`
	Salary      float64 `json:"salary" mapstructure:"salary" validate:"gt=0,lte=1"`
	CulturalFit float64 `json:"culturalFit" mapstructure:"cultural_fit" validate:"gt=0,lte=1"`
}

// DefaultWeights returns the production weighting.
func DefaultWeights() Weights {
	return Weights{
		Skills:      0.40,
		TechStack:   0.20,
		Experience:  0.15,
		Location:    0.10,
		Salary:      0.10,
		CulturalFit: 0.05,
	}
}

var weightsValidator = validator.New()

// Validate checks every weight is in (0,1] and that they sum to 1.
func (w Weights) Validate() error {
	if err := weightsValidator.Struct(w); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWeights, err)
	}
	if sum := w.sum(); math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("%w: weights sum to %.4f, want 1.0", ErrInvalidWeights, sum)
	}
	return nil
}

func (w Weights) sum() float64 {
	return w.Skills + w.TechStack + w.Experience + w.Location + w.Salary + w.CulturalFit
}

func (w Weights) of(f Factor) float64 {
	switch f {
	case FactorSkills:
		return w.Skills
	case FactorTechStack:
		return w.TechStack
	case FactorExperience:
		return w.Experience
	case FactorLocation:
		return w.Location
	case FactorSalary:
		return w.Salary
	case FactorCulturalFit:
		return w.CulturalFit
	}
	return 0
}
