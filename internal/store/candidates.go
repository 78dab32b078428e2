package store

import "context"

// Candidate is one record from the relational candidate database, with its
// skills and preferences joined in.
type Candidate struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Age             int        `json:"age,omitempty"`
	Location        string     `json:"location"`
	CurrentPosition string     `json:"current_position,omitempty"`
	ExperienceYears int        `json:"experience_years"`
	Summary         string     `json:"summary,omitempty"`
	Skills          []Skill    `json:"skills,omitempty"`
	Preference      Preference `json:"preference"`
}

type Skill struct {
	Name            string `json:"name"`
	ExperienceYears int    `json:"experience_years"`
	Proficiency     string `json:"proficiency,omitempty"`
}

type Preference struct {
	SalaryMin    int      `json:"desired_salary_min,omitempty"`
	SalaryMax    int      `json:"desired_salary_max,omitempty"`
	WorkType     string   `json:"work_type,omitempty"`
	Industries   []string `json:"industries,omitempty"`
	Availability string   `json:"availability,omitempty"`
}

// SkillFilter narrows a skill-based search.
type SkillFilter struct {
	Skills        []string
	MinExperience int
	Proficiency   string
}

// ComplexFilter combines every supported condition; zero values are ignored.
type ComplexFilter struct {
	Skills       []string
	Location     string
	SalaryMin    int
	SalaryMax    int
	WorkType     string
	Industry     string
	Availability string
	MinAge       int
	MaxAge       int
}

// Statistics aggregates the candidate database.
type Statistics struct {
	TotalCandidates      int             `json:"total_candidates"`
	LocationDistribution []LocationCount `json:"location_distribution"`
	TopSkills            []SkillCount    `json:"top_skills"`
	WorkTypeDistribution []WorkTypeCount `json:"work_type_distribution"`
}

type LocationCount struct {
	Location string `json:"location"`
	Count    int    `json:"count"`
}

type SkillCount struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

type WorkTypeCount struct {
	WorkType string `json:"work_type"`
	Count    int    `json:"count"`
}

// CandidateStore is the query interface the candidate tool adapters consume.
// Implementations are pure reads: repeated calls against an unchanged store
// yield identical results.
type CandidateStore interface {
	SearchBySkills(ctx context.Context, f SkillFilter) ([]Candidate, error)
	SearchByLocation(ctx context.Context, location string, exactMatch bool) ([]Candidate, error)
	SearchBySalaryRange(ctx context.Context, minSalary, maxSalary int) ([]Candidate, error)
	SearchByWorkType(ctx context.Context, workType string) ([]Candidate, error)
	SearchByIndustry(ctx context.Context, industry string) ([]Candidate, error)
	SearchByAvailability(ctx context.Context, status string) ([]Candidate, error)
	GetCandidate(ctx context.Context, id int64) (*Candidate, error)
	ComplexSearch(ctx context.Context, f ComplexFilter) ([]Candidate, error)
	Statistics(ctx context.Context) (*Statistics, error)
}
