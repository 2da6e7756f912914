//nolint:revive // types is a standard Go package name pattern
package types

// SkillMatch pairs a job skill with its best-matching CV skill and the
// cosine similarity score of the pair.
type SkillMatch struct {
	CVSkill    string  `json:"cv_skill"`
	JobSkill   string  `json:"job_skill"`
	Similarity float64 `json:"similarity"`
}

// ComparisonStats holds aggregate statistics derived from a comparison.
// All values are derived from the classification lists, never computed independently.
type ComparisonStats struct {
	TotalCV          int     `json:"total_cv"`
	TotalJob         int     `json:"total_job"`
	MatchedCount     int     `json:"matched_count"`
	MissingCount     int     `json:"missing_count"`
	CVOnlyCount      int     `json:"cv_only_count"`
	InterestingCount int     `json:"interesting_count"`
	MatchPercentage  float64 `json:"match_percentage"`
	AvgSimilarity    float64 `json:"avg_similarity"`
}

// SkillComparison classifies every skill from both lists.
//
// Every job skill appears in exactly one of {Matched (job side), Missing}.
// Every CV skill appears in exactly one of {Matched (cv side), CVOnly, Interesting}.
// MatchPercentage is computed against the job skill count: gaps are defined
// relative to the job, not the CV.
type SkillComparison struct {
	Matched     []SkillMatch    `json:"matched"`
	Missing     []string        `json:"missing"`
	CVOnly      []string        `json:"cv_only"`
	Interesting []string        `json:"interesting"`
	Stats       ComparisonStats `json:"stats"`
}

// MatchedCVSkills returns the CV-side skills of all matched pairs.
func (c *SkillComparison) MatchedCVSkills() []string {
	names := make([]string, 0, len(c.Matched))
	for _, m := range c.Matched {
		names = append(names, m.CVSkill)
	}
	return names
}

// MatchedJobSkills returns the job-side skills of all matched pairs.
func (c *SkillComparison) MatchedJobSkills() []string {
	names := make([]string, 0, len(c.Matched))
	for _, m := range c.Matched {
		names = append(names, m.JobSkill)
	}
	return names
}
