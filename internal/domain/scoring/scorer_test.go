package scoring

import (
	"reflect"
	"testing"
	"time"
)

var asOf = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestScore_Deterministic(t *testing.T) {
	c := Candidate{
		SkillKeywords:     []string{"Go", "PostgreSQL", "Docker"},
		Work:              []WorkSpan{{StartDate: "2019-03", EndDate: "2024-06"}},
		City:              "Berlin",
		CountryCode:       "DE",
		SalaryExpectation: 90000,
		AsOf:              asOf,
	}
	j := Job{
		RequiredSkills:  []string{"Go", "Kubernetes"},
		BonusSkills:     []string{"PostgreSQL"},
		ExperienceLevel: "senior",
		City:            "Berlin",
		CountryCode:     "DE",
		SalaryMin:       80000,
		SalaryMax:       110000,
	}

	first := Score(c, j)
	for i := 0; i < 10; i++ {
		got := Score(c, j)
		if got.Score != first.Score {
			t.Fatalf("score changed between calls: %d != %d", got.Score, first.Score)
		}
		if !reflect.DeepEqual(got.Breakdown, first.Breakdown) {
			t.Fatalf("breakdown changed between calls: %v != %v", got.Breakdown, first.Breakdown)
		}
	}
}

func TestScore_RequiredOutweighsBonus(t *testing.T) {
	// Resume with JavaScript+React against a job requiring
	// [JavaScript, Python] with bonus [React]: 1-of-2 required matched,
	// 1-of-1 bonus matched, required contribution larger per skill.
	c := Candidate{SkillKeywords: []string{"JavaScript", "React"}, AsOf: asOf}
	j := Job{
		RequiredSkills: []string{"JavaScript", "Python"},
		BonusSkills:    []string{"React"},
	}

	res := Score(c, j)

	required := res.Breakdown["requiredSkills"]
	bonus := res.Breakdown["bonusSkills"]

	if required != weightRequiredSkills/2 {
		t.Fatalf("required contribution: expected %v, got %v", weightRequiredSkills/2, required)
	}
	if bonus != weightBonusSkills {
		t.Fatalf("bonus contribution: expected %v, got %v", weightBonusSkills, bonus)
	}
	// A single required match (half the pool) still beats a full bonus match.
	if required <= bonus {
		t.Fatalf("required match should outweigh bonus match: %v <= %v", required, bonus)
	}
	if len(res.Missing) != 1 || res.Missing[0] != "python" {
		t.Fatalf("expected missing=[python], got %v", res.Missing)
	}
}

func TestScore_SkillOverlapMonotonic(t *testing.T) {
	j := Job{RequiredSkills: []string{"Go", "Kubernetes", "Terraform"}}

	base := Candidate{SkillKeywords: []string{"Go"}, AsOf: asOf}
	prev := Score(base, j).Breakdown["requiredSkills"]

	for _, extra := range []string{"Kubernetes", "Terraform"} {
		base.SkillKeywords = append(base.SkillKeywords, extra)
		cur := Score(base, j).Breakdown["requiredSkills"]
		if cur < prev {
			t.Fatalf("adding matching skill %q decreased contribution: %v -> %v", extra, prev, cur)
		}
		prev = cur
	}
}

func TestScore_CaseInsensitiveSkillMatch(t *testing.T) {
	c := Candidate{SkillKeywords: []string{"javascript", "REACT"}, AsOf: asOf}
	j := Job{RequiredSkills: []string{"JavaScript"}, BonusSkills: []string{"react"}}

	res := Score(c, j)
	if res.Breakdown["requiredSkills"] != weightRequiredSkills {
		t.Fatalf("expected full required contribution, got %v", res.Breakdown["requiredSkills"])
	}
	if res.Breakdown["bonusSkills"] != weightBonusSkills {
		t.Fatalf("expected full bonus contribution, got %v", res.Breakdown["bonusSkills"])
	}
}

func TestScore_NeutralDefaults(t *testing.T) {
	c := Candidate{SkillKeywords: []string{"Go"}, AsOf: asOf}
	j := Job{RequiredSkills: []string{"Go"}}

	res := Score(c, j)

	if res.Breakdown["salary"] != weightSalary*0.5 {
		t.Fatalf("missing salary data should be neutral, got %v", res.Breakdown["salary"])
	}
	if res.Breakdown["salary"] == 0 {
		t.Fatalf("missing salary data must not contribute zero")
	}
	if res.Breakdown["experience"] != weightExperience*0.7 {
		t.Fatalf("unknown experience level should be neutral, got %v", res.Breakdown["experience"])
	}
}

func TestScore_LocationSoftConstraint(t *testing.T) {
	c := Candidate{
		SkillKeywords: []string{"Go"},
		City:          "Lyon",
		CountryCode:   "FR",
		AsOf:          asOf,
	}
	mismatch := Job{RequiredSkills: []string{"Go"}, City: "Tokyo", CountryCode: "JP"}
	remote := Job{RequiredSkills: []string{"Go"}, Remote: true}

	resMismatch := Score(c, mismatch)
	resRemote := Score(c, remote)

	if resMismatch.Breakdown["location"] <= 0 {
		t.Fatalf("location mismatch must not zero the criterion")
	}
	if resRemote.Breakdown["location"] != weightLocation {
		t.Fatalf("remote job should score full location weight, got %v", resRemote.Breakdown["location"])
	}
	if resMismatch.Score >= resRemote.Score {
		t.Fatalf("mismatch should score below remote: %d >= %d", resMismatch.Score, resRemote.Score)
	}
}

func TestScore_SalaryProximity(t *testing.T) {
	c := Candidate{SkillKeywords: []string{"Go"}, SalaryExpectation: 100000, AsOf: asOf}

	within := Job{RequiredSkills: []string{"Go"}, SalaryMin: 90000, SalaryMax: 120000}
	slightlyOver := Job{RequiredSkills: []string{"Go"}, SalaryMin: 60000, SalaryMax: 90000}
	farOver := Job{RequiredSkills: []string{"Go"}, SalaryMin: 30000, SalaryMax: 40000}

	sWithin := Score(c, within).Breakdown["salary"]
	sSlight := Score(c, slightlyOver).Breakdown["salary"]
	sFar := Score(c, farOver).Breakdown["salary"]

	if sWithin != weightSalary {
		t.Fatalf("expectation within range should score full weight, got %v", sWithin)
	}
	if !(sWithin > sSlight && sSlight > sFar) {
		t.Fatalf("salary proximity not monotonic: %v, %v, %v", sWithin, sSlight, sFar)
	}
}

func TestScore_ExperienceFromWorkHistory(t *testing.T) {
	junior := Candidate{
		SkillKeywords: []string{"Go"},
		Work:          []WorkSpan{{StartDate: "2025-01", EndDate: "2025-12"}},
		AsOf:          asOf,
	}
	senior := Candidate{
		SkillKeywords: []string{"Go"},
		Work: []WorkSpan{
			{StartDate: "2016-01", EndDate: "2020-06"},
			{StartDate: "2020-07"}, // open-ended, anchored by AsOf
		},
		AsOf: asOf,
	}
	j := Job{RequiredSkills: []string{"Go"}, ExperienceLevel: "senior"}

	sJunior := Score(junior, j).Breakdown["experience"]
	sSenior := Score(senior, j).Breakdown["experience"]

	if sSenior != weightExperience {
		t.Fatalf("10y candidate vs senior job: expected full weight, got %v", sSenior)
	}
	if sJunior >= sSenior {
		t.Fatalf("1y candidate should score below 10y candidate: %v >= %v", sJunior, sSenior)
	}
}

func TestDetermineOutcome_Thresholds(t *testing.T) {
	cases := []struct {
		score int
		want  Outcome
	}{
		{100, OutcomeStrongFit},
		{75, OutcomeStrongFit},
		{74, OutcomePossibleFit},
		{50, OutcomePossibleFit},
		{49, OutcomeWeakFit},
		{0, OutcomeWeakFit},
	}
	for _, tc := range cases {
		if got := DetermineOutcome(tc.score); got != tc.want {
			t.Fatalf("score %d: expected %s, got %s", tc.score, tc.want, got)
		}
	}
}

func TestRank_StableOnEqualScores(t *testing.T) {
	c := Candidate{SkillKeywords: []string{"Go"}, AsOf: asOf}

	// Jobs 1 and 2 are identical and must keep their input order; job 0
	// matches nothing required and sorts last.
	jobs := []Job{
		{RequiredSkills: []string{"COBOL", "Fortran"}},
		{RequiredSkills: []string{"Go"}},
		{RequiredSkills: []string{"Go"}},
	}

	ranked := Rank(c, jobs)
	if len(ranked) != 3 {
		t.Fatalf("expected 3 ranked jobs, got %d", len(ranked))
	}
	if ranked[0].OriginalIndex != 1 || ranked[1].OriginalIndex != 2 {
		t.Fatalf("equal scores must preserve input order, got %d then %d", ranked[0].OriginalIndex, ranked[1].OriginalIndex)
	}
	if ranked[2].OriginalIndex != 0 {
		t.Fatalf("weakest job should rank last, got index %d", ranked[2].OriginalIndex)
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Result.Score > ranked[i-1].Result.Score {
			t.Fatalf("ranking not descending at %d", i)
		}
	}
}
