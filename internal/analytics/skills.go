package analytics

import (
	"math"
	"sort"
	"strings"
	"time"

	"portfolioapi/internal/model"
)

// SkillRequirement is one demanded skill. MinLevel defaults to 1 and Weight to 1.
type SkillRequirement struct {
	Skill    string  `json:"skill" validate:"required,max=100"`
	MinLevel int     `json:"min_level" validate:"omitempty,min=1,max=5"`
	Weight   float64 `json:"weight" validate:"omitempty,gt=0"`
}

// SkillCoverage is how well one user covers one requirement.
type SkillCoverage struct {
	Skill    string  `json:"skill"`
	Level    int     `json:"level"`
	Required int     `json:"required"`
	Coverage float64 `json:"coverage"`
}

// SkillMatch ranks one user against a requirement set.
type SkillMatch struct {
	UserID            string          `json:"user_id"`
	Name              string          `json:"name"`
	MatchScore        float64         `json:"match_score"`
	AvailabilityBonus float64         `json:"availability_bonus"`
	TotalScore        float64         `json:"total_score"`
	Utilization       float64         `json:"utilization"`
	Skills            []SkillCoverage `json:"skills"`
	MissingSkills     []string        `json:"missing_skills"`
}

func normalize(reqs []SkillRequirement) []SkillRequirement {
	out := make([]SkillRequirement, 0, len(reqs))
	for _, r := range reqs {
		if r.MinLevel <= 0 {
			r.MinLevel = 1
		}
		if r.Weight <= 0 {
			r.Weight = 1
		}
		r.Skill = strings.TrimSpace(r.Skill)
		out = append(out, r)
	}
	return out
}

// AvailabilityBonus grants up to 10 points to users with spare capacity.
func AvailabilityBonus(utilization float64) float64 {
	return math.Max(0, math.Min(10, (100-utilization)/10))
}

// MatchSkills ranks active users by weighted skill coverage plus availability.
func MatchSkills(users []model.User, tasks []model.Task, reqs []SkillRequirement, now time.Time) []SkillMatch {
	reqs = normalize(reqs)
	util := make(map[string]float64)
	for _, w := range ComputeWorkload(users, tasks, now) {
		util[w.UserID] = w.Utilization
	}

	out := make([]SkillMatch, 0, len(users))
	for _, u := range users {
		if u.Status != model.UserStatusActive {
			continue
		}
		m := SkillMatch{UserID: u.ID, Name: u.FullName(), Utilization: util[u.ID], MissingSkills: []string{}}
		var weighted, weights float64
		for _, r := range reqs {
			lvl := u.SkillLevel(r.Skill)
			cov := math.Min(float64(lvl)/float64(r.MinLevel), 1)
			m.Skills = append(m.Skills, SkillCoverage{Skill: r.Skill, Level: lvl, Required: r.MinLevel, Coverage: round2(cov)})
			if lvl < r.MinLevel {
				m.MissingSkills = append(m.MissingSkills, r.Skill)
			}
			weighted += cov * r.Weight
			weights += r.Weight
		}
		if weights > 0 {
			m.MatchScore = round2(weighted / weights * 100)
		}
		m.AvailabilityBonus = round2(AvailabilityBonus(m.Utilization))
		m.TotalScore = round2(m.MatchScore + m.AvailabilityBonus)
		out = append(out, m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalScore != out[j].TotalScore {
			return out[i].TotalScore > out[j].TotalScore
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// SkillGap is a requirement the user does not meet.
type SkillGap struct {
	Skill    string `json:"skill"`
	Required int    `json:"required"`
	Current  int    `json:"current"`
	Gap      int    `json:"gap"`
	Severity string `json:"severity"`
}

// SkillGaps lists the unmet requirements of u, largest gap first.
func SkillGaps(u model.User, reqs []SkillRequirement) []SkillGap {
	out := []SkillGap{}
	for _, r := range normalize(reqs) {
		cur := u.SkillLevel(r.Skill)
		gap := r.MinLevel - cur
		if gap <= 0 {
			continue
		}
		sev := "low"
		switch {
		case cur == 0 || gap >= 3:
			sev = "high"
		case gap == 2:
			sev = "medium"
		}
		out = append(out, SkillGap{Skill: r.Skill, Required: r.MinLevel, Current: cur, Gap: gap, Severity: sev})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Gap > out[j].Gap })
	return out
}
