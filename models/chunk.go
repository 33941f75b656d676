package models

// ServiceCategory identifies one of the fixed knowledge-base categories,
// each backed by a single HTML source file.
type ServiceCategory string

const (
	CategoryAlternative   ServiceCategory = "alternative_medicine"
	CategoryCommunication ServiceCategory = "communication_clinic"
	CategoryDental        ServiceCategory = "dental"
	CategoryOptometry     ServiceCategory = "optometry"
	CategoryPregnancy     ServiceCategory = "pregnancy"
	CategoryWorkshops     ServiceCategory = "health_workshops"
)

// EligibilityTag restricts a chunk to one (HMO, membership tier) combination.
type EligibilityTag struct {
	HMO  string `json:"hmo"`
	Tier string `json:"tier"`
}

// Chunk is an immutable unit of retrievable knowledge. Vectors are assigned
// once at ingestion and never mutated afterwards.
type Chunk struct {
	ID          int              `json:"chunk_id"`
	Text        string           `json:"text"`
	SourceFile  string           `json:"source_file"`
	Category    ServiceCategory  `json:"category"`
	Eligibility []EligibilityTag `json:"eligibility_tags,omitempty"`
	Vector      []float32        `json:"-"`
}

// AppliesTo reports whether the chunk is eligible for the given HMO and
// membership tier. An empty eligibility set means the chunk applies to all
// profiles.
func (c *Chunk) AppliesTo(hmo, tier string) bool {
	if len(c.Eligibility) == 0 {
		return true
	}
	for _, tag := range c.Eligibility {
		if tag.HMO == hmo && tag.Tier == tier {
			return true
		}
	}
	return false
}
