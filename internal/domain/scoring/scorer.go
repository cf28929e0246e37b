package scoring

import (
	"math"
	"sort"
	"strings"
	"time"
)

// Candidate is the scorer's view of a resume. AsOf anchors open-ended work
// ranges so the score stays a pure function of its inputs.
type Candidate struct {
	SkillKeywords     []string
	Work              []WorkSpan
	City              string
	Region            string
	CountryCode       string
	SalaryExpectation float64
	AsOf              time.Time
}

type WorkSpan struct {
	StartDate string
	EndDate   string
}

// Job is the scorer's view of an enriched posting.
type Job struct {
	RequiredSkills  []string
	BonusSkills     []string
	ExperienceLevel string
	City            string
	Region          string
	CountryCode     string
	Remote          bool
	SalaryMin       float64
	SalaryMax       float64
}

type Outcome string

const (
	OutcomeStrongFit   Outcome = "strong-fit"
	OutcomePossibleFit Outcome = "possible-fit"
	OutcomeWeakFit     Outcome = "weak-fit"
)

type Result struct {
	Score     int
	Breakdown map[string]float64
	Outcome   Outcome
	Matched   []string
	Missing   []string
}

// Criterion weights. They sum to 100; required-skill overlap outweighs
// bonus-skill overlap.
const (
	weightRequiredSkills = 40.0
	weightBonusSkills    = 10.0
	weightExperience     = 20.0
	weightLocation       = 20.0
	weightSalary         = 10.0
)

// Outcome thresholds are policy constants, not derived from data.
const (
	strongFitThreshold   = 75
	possibleFitThreshold = 50
)

// Score computes an explainable match between one resume and one job.
// Pure function: no I/O, no randomness, identical inputs give identical
// output.
func Score(c Candidate, j Job) Result {
	breakdown := make(map[string]float64, 5)

	required, matched, missing := overlap(c.SkillKeywords, j.RequiredSkills, weightRequiredSkills)
	breakdown["requiredSkills"] = required

	bonus, bonusMatched, _ := overlap(c.SkillKeywords, j.BonusSkills, weightBonusSkills)
	breakdown["bonusSkills"] = bonus

	breakdown["experience"] = experienceScore(c, j)
	breakdown["location"] = locationScore(c, j)
	breakdown["salary"] = salaryScore(c, j)

	var total float64
	for _, v := range breakdown {
		total += v
	}

	score := int(math.Round(total))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return Result{
		Score:     score,
		Breakdown: breakdown,
		Outcome:   DetermineOutcome(score),
		Matched:   append(matched, bonusMatched...),
		Missing:   missing,
	}
}

func DetermineOutcome(score int) Outcome {
	switch {
	case score >= strongFitThreshold:
		return OutcomeStrongFit
	case score >= possibleFitThreshold:
		return OutcomePossibleFit
	default:
		return OutcomeWeakFit
	}
}

// RankedJob pairs a job with its result for ranking. OriginalIndex keeps
// equal scores in input order.
type RankedJob struct {
	OriginalIndex int
	Job           Job
	Result        Result
}

// Rank scores every job for one candidate and sorts descending by score.
// The sort is stable: equal scores keep their input order.
func Rank(c Candidate, jobs []Job) []RankedJob {
	out := make([]RankedJob, 0, len(jobs))
	for i, j := range jobs {
		out = append(out, RankedJob{OriginalIndex: i, Job: j, Result: Score(c, j)})
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Result.Score > out[b].Result.Score
	})
	return out
}

// overlap returns the weighted fraction of wanted skills present in the
// candidate's keyword set. A job that lists nothing for this criterion
// contributes the full weight: absence of a requirement is not evidence
// against the candidate.
func overlap(keywords, wanted []string, weight float64) (float64, []string, []string) {
	wanted = normalizeSet(wanted)
	if len(wanted) == 0 {
		return weight, nil, nil
	}

	have := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		k = normalize(k)
		if k == "" {
			continue
		}
		have[k] = struct{}{}
	}

	matched := make([]string, 0, len(wanted))
	missing := make([]string, 0)
	for _, w := range wanted {
		if _, ok := have[w]; ok {
			matched = append(matched, w)
		} else {
			missing = append(missing, w)
		}
	}

	return weight * float64(len(matched)) / float64(len(wanted)), matched, missing
}

func experienceScore(c Candidate, j Job) float64 {
	requiredYears, known := requiredYearsForLevel(j.ExperienceLevel)
	if !known {
		return weightExperience * 0.7
	}
	if requiredYears == 0 {
		return weightExperience
	}

	years := totalYears(c.Work, c.AsOf)
	ratio := years / float64(requiredYears)
	if ratio > 1 {
		ratio = 1
	}
	if ratio < 0 {
		ratio = 0
	}
	return weightExperience * ratio
}

func requiredYearsForLevel(level string) (int, bool) {
	switch normalize(level) {
	case "intern", "internship", "entry", "entry-level", "junior":
		return 0, true
	case "mid", "mid-level", "intermediate":
		return 2, true
	case "senior":
		return 5, true
	case "lead", "staff", "principal":
		return 8, true
	default:
		return 0, false
	}
}

// locationScore is a soft constraint: a mismatch lowers the contribution
// but never zeroes the total.
func locationScore(c Candidate, j Job) float64 {
	if j.Remote {
		return weightLocation
	}
	if normalize(j.City) == "" && normalize(j.Region) == "" && normalize(j.CountryCode) == "" {
		return weightLocation * 0.7
	}
	if normalize(c.City) == "" && normalize(c.Region) == "" && normalize(c.CountryCode) == "" {
		return weightLocation * 0.5
	}

	cityMatch := normalize(c.City) != "" && normalize(c.City) == normalize(j.City)
	regionMatch := normalize(c.Region) != "" && normalize(c.Region) == normalize(j.Region)
	countryMatch := normalize(c.CountryCode) != "" && normalize(c.CountryCode) == normalize(j.CountryCode)

	switch {
	case cityMatch:
		return weightLocation
	case regionMatch:
		return weightLocation * 0.7
	case countryMatch:
		return weightLocation * 0.5
	default:
		return weightLocation * 0.3
	}
}

// salaryScore is neutral when either side lacks data: missing information
// must not penalize.
func salaryScore(c Candidate, j Job) float64 {
	if c.SalaryExpectation <= 0 || j.SalaryMax <= 0 {
		return weightSalary * 0.5
	}
	if c.SalaryExpectation <= j.SalaryMax {
		return weightSalary
	}

	over := (c.SalaryExpectation - j.SalaryMax) / j.SalaryMax
	score := weightSalary * (1 - over)
	if score < 0 {
		score = 0
	}
	return score
}

func totalYears(spans []WorkSpan, asOf time.Time) float64 {
	var days float64
	for _, s := range spans {
		start, ok := parseDate(s.StartDate)
		if !ok {
			continue
		}
		end, ok := parseDate(s.EndDate)
		if !ok {
			if asOf.IsZero() {
				continue
			}
			end = asOf
		}
		if end.Before(start) {
			continue
		}
		days += end.Sub(start).Hours() / 24
	}
	return days / 365.25
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizeSet(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = normalize(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
