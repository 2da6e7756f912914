package skills

import (
	"context"
	"math"
	"strings"

	"github.com/jonathan/cv-optimizer/internal/llm"
	"github.com/jonathan/cv-optimizer/internal/rag"
	"github.com/jonathan/cv-optimizer/internal/types"
)

// Similarity thresholds on the normalized (cos+1)/2 scale.
const (
	// MatchThreshold is the minimum similarity for a job skill to count
	// as covered by a CV skill.
	MatchThreshold = 0.85
	// InterestingThreshold marks unmatched CV skills close enough to the
	// job to be worth surfacing.
	InterestingThreshold = 0.6
)

// Comparator compares CV skills against job requirements using
// embedding similarity.
type Comparator struct {
	embedder llm.Embedder
}

// NewComparator creates a comparator backed by the given embedder.
func NewComparator(embedder llm.Embedder) *Comparator {
	return &Comparator{embedder: embedder}
}

// Compare matches each job skill against the CV skill list.
// A job skill is matched when its best CV skill scores at or above
// MatchThreshold, missing otherwise. Each CV skill not used by any
// match is interesting when its best job similarity reaches
// InterestingThreshold, CV-only otherwise.
// Input order is preserved in all output lists.
func (c *Comparator) Compare(ctx context.Context, cvSkills, jobSkills []string) (*types.SkillComparison, error) {
	comparison := &types.SkillComparison{
		Matched:     []types.SkillMatch{},
		Missing:     []string{},
		CVOnly:      []string{},
		Interesting: []string{},
	}

	cvVecs, jobVecs, err := c.embedSkills(ctx, cvSkills, jobSkills)
	if err != nil {
		return nil, err
	}

	similarity := func(cvIdx, jobIdx int) float64 {
		if strings.EqualFold(cvSkills[cvIdx], jobSkills[jobIdx]) {
			return 1.0
		}
		return rag.NormalizedSimilarity(cvVecs[cvIdx], jobVecs[jobIdx])
	}

	matchedCV := make(map[int]bool, len(cvSkills))
	var similaritySum float64

	for j := range jobSkills {
		bestScore := -1.0
		bestCV := -1
		for i := range cvSkills {
			if score := similarity(i, j); score > bestScore {
				bestScore = score
				bestCV = i
			}
		}

		if bestCV >= 0 && bestScore >= MatchThreshold {
			comparison.Matched = append(comparison.Matched, types.SkillMatch{
				CVSkill:    cvSkills[bestCV],
				JobSkill:   jobSkills[j],
				Similarity: round3(bestScore),
			})
			matchedCV[bestCV] = true
			similaritySum += bestScore
		} else {
			comparison.Missing = append(comparison.Missing, jobSkills[j])
		}
	}

	for i := range cvSkills {
		if matchedCV[i] {
			continue
		}
		bestScore := 0.0
		for j := range jobSkills {
			if score := similarity(i, j); score > bestScore {
				bestScore = score
			}
		}
		if bestScore >= InterestingThreshold {
			comparison.Interesting = append(comparison.Interesting, cvSkills[i])
		} else {
			comparison.CVOnly = append(comparison.CVOnly, cvSkills[i])
		}
	}

	comparison.Stats = buildStats(comparison, len(cvSkills), len(jobSkills), similaritySum)
	return comparison, nil
}

// embedSkills embeds both skill lists in a single batch call.
func (c *Comparator) embedSkills(ctx context.Context, cvSkills, jobSkills []string) ([][]float32, [][]float32, error) {
	all := make([]string, 0, len(cvSkills)+len(jobSkills))
	all = append(all, cvSkills...)
	all = append(all, jobSkills...)
	if len(all) == 0 {
		return nil, nil, nil
	}

	vectors, err := c.embedder.EmbedTexts(ctx, all)
	if err != nil {
		return nil, nil, &ComparisonError{Message: "embedding skills", Cause: err}
	}

	return vectors[:len(cvSkills)], vectors[len(cvSkills):], nil
}

func buildStats(comparison *types.SkillComparison, totalCV, totalJob int, similaritySum float64) types.ComparisonStats {
	stats := types.ComparisonStats{
		TotalCV:          totalCV,
		TotalJob:         totalJob,
		MatchedCount:     len(comparison.Matched),
		MissingCount:     len(comparison.Missing),
		CVOnlyCount:      len(comparison.CVOnly),
		InterestingCount: len(comparison.Interesting),
	}

	// An empty job list scores 0, not a division error.
	if totalJob > 0 {
		stats.MatchPercentage = round1(float64(stats.MatchedCount) / float64(totalJob) * 100)
	}
	if stats.MatchedCount > 0 {
		stats.AvgSimilarity = round3(similaritySum / float64(stats.MatchedCount))
	}
	return stats
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
