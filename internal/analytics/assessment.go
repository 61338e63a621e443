package analytics

import (
	"math"
	"sort"
	"strings"
	"time"
)

// EvidenceHalfLife halves the weight of evidence every 180 days.
const EvidenceHalfLife = 180 * 24 * time.Hour

// Evidence is one observation of a skill, rated 1 to 5.
type Evidence struct {
	Skill       string    `json:"skill" validate:"required,max=100"`
	Rating      float64   `json:"rating" validate:"gte=1,lte=5"`
	Source      string    `json:"source"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}

// SkillAssessment is the aggregated level of one skill.
type SkillAssessment struct {
	Skill         string  `json:"skill"`
	Level         float64 `json:"level"`
	Proficiency   string  `json:"proficiency"`
	Confidence    float64 `json:"confidence"`
	EvidenceCount int     `json:"evidence_count"`
}

// Proficiency names a numeric level.
func Proficiency(level float64) string {
	switch {
	case level >= 4.5:
		return "expert"
	case level >= 3.5:
		return "advanced"
	case level >= 2.5:
		return "intermediate"
	case level >= 1.5:
		return "beginner"
	default:
		return "novice"
	}
}

// AssessSkills averages evidence per skill weighted by recency. Skill names
// are matched case-insensitively; undated evidence counts as current.
func AssessSkills(evidence []Evidence, now time.Time) []SkillAssessment {
	type acc struct {
		name         string
		sum, weights float64
		count        int
	}
	groups := make(map[string]*acc)
	for _, e := range evidence {
		name := strings.TrimSpace(e.Skill)
		if name == "" {
			continue
		}
		k := strings.ToLower(name)
		g, ok := groups[k]
		if !ok {
			g = &acc{name: name}
			groups[k] = g
		}
		w := 1.0
		if !e.Date.IsZero() && e.Date.Before(now) {
			w = math.Pow(0.5, float64(now.Sub(e.Date))/float64(EvidenceHalfLife))
		}
		g.sum += w * math.Max(1, math.Min(5, e.Rating))
		g.weights += w
		g.count++
	}

	out := make([]SkillAssessment, 0, len(groups))
	for _, g := range groups {
		level := round2(g.sum / g.weights)
		out = append(out, SkillAssessment{
			Skill:         g.name,
			Level:         level,
			Proficiency:   Proficiency(level),
			Confidence:    round2(math.Min(0.95, 1-1/float64(g.count+1))),
			EvidenceCount: g.count,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Level != out[j].Level {
			return out[i].Level > out[j].Level
		}
		return out[i].Skill < out[j].Skill
	})
	return out
}
