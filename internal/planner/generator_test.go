package planner

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.March, 10, 14, 37, 12, 0, time.UTC)

func fixedGenerator() *Generator {
	return &Generator{Now: func() time.Time { return fixedNow }}
}

func inDays(n int) time.Time {
	return time.Date(2026, time.March, 10+n, 0, 0, 0, 0, time.UTC)
}

func TestGenerate_EmptySubjects(t *testing.T) {
	_, err := fixedGenerator().Generate(nil, 3)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestGenerate_HardSubjectFiveDays(t *testing.T) {
	subjects := []SubjectInput{{ID: "1", Name: "Math", ExamDate: inDays(5), Difficulty: Hard}}

	scored := fixedGenerator().Prioritize(subjects, 4)
	require.Len(t, scored, 1)
	assert.Equal(t, 5, scored[0].DaysUntilExam)
	assert.InDelta(t, 32.0, scored[0].PriorityScore, 1e-9)
	assert.InDelta(t, 4*5*0.6*1.6, scored[0].HoursNeeded, 1e-9)

	plan, err := fixedGenerator().Generate(subjects, 4)
	require.NoError(t, err)
	assert.Equal(t, 5, plan.TotalDays)
	assert.Equal(t, 4.0, plan.DailyHours)
	require.Len(t, plan.Sessions, 5)

	for i, s := range plan.Sessions {
		assert.Equal(t, "Math", s.Subject)
		assert.Equal(t, i+1, s.DayNumber)
		assert.Equal(t, time.Date(2026, time.March, 10+i, 9, 0, 0, 0, time.UTC), s.StartTime)

		if i < 3 {
			assert.False(t, s.IsRevision, "day %d", i)
			assert.Equal(t, 1843200*time.Millisecond, s.Duration(), "day %d", i)
		} else {
			assert.True(t, s.IsRevision, "day %d", i)
			assert.Equal(t, 11520*time.Second, s.Duration(), "day %d", i)
		}
	}
}

func TestGenerate_RevisionDays(t *testing.T) {
	subjects := []SubjectInput{{Name: "Chemistry", ExamDate: inDays(2), Difficulty: Medium}}

	plan, err := fixedGenerator().Generate(subjects, 3)
	require.NoError(t, err)
	require.Len(t, plan.Sessions, 2)

	for _, s := range plan.Sessions {
		assert.True(t, s.IsRevision)
		assert.InDelta(t, 2.4, s.Hours(), 1e-6)
	}
}

func TestGenerate_RevisionCappedByRemainingHours(t *testing.T) {
	// Both exams are tomorrow; the first revision session takes 80% of the day,
	// the second only gets what is left.
	subjects := []SubjectInput{
		{Name: "Physics", ExamDate: inDays(1), Difficulty: Hard},
		{Name: "History", ExamDate: inDays(1), Difficulty: Easy},
	}

	plan, err := fixedGenerator().Generate(subjects, 5)
	require.NoError(t, err)
	require.Len(t, plan.Sessions, 2)

	assert.Equal(t, "Physics", plan.Sessions[0].Subject)
	assert.InDelta(t, 4.0, plan.Sessions[0].Hours(), 1e-6)
	assert.Equal(t, "History", plan.Sessions[1].Subject)
	assert.InDelta(t, 1.0, plan.Sessions[1].Hours(), 1e-6)
}

func TestGenerate_MinimumSessionLength(t *testing.T) {
	tests := []struct {
		name       string
		dailyHours float64
		want       int
	}{
		{"allocation of 0.49h is dropped", 0.6125, 0},
		{"allocation of 0.5h is kept", 0.625, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subjects := []SubjectInput{{Name: "Biology", ExamDate: inDays(1), Difficulty: Easy}}
			plan, err := fixedGenerator().Generate(subjects, tt.dailyHours)
			require.NoError(t, err)
			assert.Len(t, plan.Sessions, tt.want)
		})
	}
}

func TestGenerate_SkipsPassedExams(t *testing.T) {
	subjects := []SubjectInput{
		{Name: "Art", ExamDate: inDays(3), Difficulty: Easy},
		{Name: "Law", ExamDate: inDays(12), Difficulty: Hard},
	}

	plan, err := fixedGenerator().Generate(subjects, 6)
	require.NoError(t, err)
	assert.Equal(t, 12, plan.TotalDays)

	var sawArt bool
	for _, s := range plan.Sessions {
		if s.Subject != "Art" {
			continue
		}
		sawArt = true
		// Day 4 is exam day, nothing is scheduled then or after.
		assert.LessOrEqual(t, s.DayNumber, 3)
	}
	assert.True(t, sawArt)
}

func TestGenerate_SameDayExam(t *testing.T) {
	subjects := []SubjectInput{{Name: "Music", ExamDate: inDays(0), Difficulty: Hard}}

	scored := fixedGenerator().Prioritize(subjects, 2)
	assert.Equal(t, 1, scored[0].DaysUntilExam)

	plan, err := fixedGenerator().Generate(subjects, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, plan.TotalDays)
	// The only day is the exam day itself.
	assert.Empty(t, plan.Sessions)
}

func TestGenerate_HorizonCapped(t *testing.T) {
	subjects := []SubjectInput{{Name: "Thesis", ExamDate: inDays(200), Difficulty: Hard}}

	plan, err := fixedGenerator().Generate(subjects, 8)
	require.NoError(t, err)
	assert.Equal(t, MaxDays, plan.TotalDays)
	for _, s := range plan.Sessions {
		assert.LessOrEqual(t, s.DayNumber, MaxDays)
	}
}

func TestGenerate_LowPriorityCadence(t *testing.T) {
	// score = 100/60 ≈ 1.67, so floor(3/score) = 1: studied every day.
	// score = 100/80 = 1.25, so floor(3/score) = 2: every other day.
	assert.Equal(t, 1, cadence(100.0/60))
	assert.Equal(t, 2, cadence(100.0/80))
	assert.Equal(t, 1, cadence(160))
	assert.Equal(t, 10, cadence(100.0/365))
}

func TestGenerate_PriorityOrderWithinDay(t *testing.T) {
	subjects := []SubjectInput{
		{Name: "Geography", ExamDate: inDays(30), Difficulty: Easy},
		{Name: "Calculus", ExamDate: inDays(4), Difficulty: Hard},
		{Name: "French", ExamDate: inDays(10), Difficulty: Medium},
	}

	scored := fixedGenerator().Prioritize(subjects, 10)
	names := []string{scored[0].Name, scored[1].Name, scored[2].Name}
	assert.Equal(t, []string{"Calculus", "French", "Geography"}, names)

	plan, err := fixedGenerator().Generate(subjects, 10)
	require.NoError(t, err)

	var dayOne []string
	for _, s := range plan.Sessions {
		if s.DayNumber == 1 {
			dayOne = append(dayOne, s.Subject)
		}
	}
	assert.Equal(t, []string{"Calculus", "French"}, dayOne)
}

func TestGenerate_EqualScoresKeepInputOrder(t *testing.T) {
	a := SubjectInput{Name: "A", ExamDate: inDays(3), Difficulty: Hard}
	b := SubjectInput{Name: "B", ExamDate: inDays(3), Difficulty: Hard}

	ab := fixedGenerator().Prioritize([]SubjectInput{a, b}, 4)
	ba := fixedGenerator().Prioritize([]SubjectInput{b, a}, 4)

	assert.Equal(t, "A", ab[0].Name)
	assert.Equal(t, "B", ba[0].Name)
	assert.Equal(t, ab[0].PriorityScore, ba[0].PriorityScore)
}

func TestPrioritize_PermutationKeepsOrder(t *testing.T) {
	subjects := []SubjectInput{
		{Name: "Geography", ExamDate: inDays(30), Difficulty: Easy},
		{Name: "Calculus", ExamDate: inDays(4), Difficulty: Hard},
		{Name: "French", ExamDate: inDays(10), Difficulty: Medium},
		{Name: "Chemistry", ExamDate: inDays(6), Difficulty: Medium},
		{Name: "Art", ExamDate: inDays(20), Difficulty: Easy},
	}
	want := subjectNames(fixedGenerator().Prioritize(subjects, 6))

	rng := rand.New(rand.NewPCG(3, 5))
	for range 20 {
		shuffled := append([]SubjectInput(nil), subjects...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		assert.Equal(t, want, subjectNames(fixedGenerator().Prioritize(shuffled, 6)), "input %v", inputNames(shuffled))
	}
}

func subjectNames(scored []Subject) []string {
	out := make([]string, len(scored))
	for i, s := range scored {
		out[i] = s.Name
	}
	return out
}

func inputNames(in []SubjectInput) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = s.Name
	}
	return out
}

func TestGenerate_SessionsOverlapByDefault(t *testing.T) {
	subjects := []SubjectInput{
		{Name: "Physics", ExamDate: inDays(2), Difficulty: Hard},
		{Name: "History", ExamDate: inDays(2), Difficulty: Easy},
	}

	plan, err := fixedGenerator().Generate(subjects, 10)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(plan.Sessions), 2)
	assert.Equal(t, plan.Sessions[0].StartTime, plan.Sessions[1].StartTime)
}

func TestGenerate_Stagger(t *testing.T) {
	subjects := []SubjectInput{
		{Name: "Physics", ExamDate: inDays(2), Difficulty: Hard},
		{Name: "History", ExamDate: inDays(2), Difficulty: Easy},
	}

	g := fixedGenerator()
	g.Stagger = true
	plan, err := g.Generate(subjects, 10)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(plan.Sessions), 2)

	first, second := plan.Sessions[0], plan.Sessions[1]
	require.Equal(t, first.DayNumber, second.DayNumber)
	assert.Equal(t, first.EndTime, second.StartTime)
}

func TestGenerate_Idempotent(t *testing.T) {
	subjects := []SubjectInput{
		{Name: "Math", ExamDate: inDays(14), Difficulty: Hard},
		{Name: "English", ExamDate: inDays(21), Difficulty: Easy},
	}

	first, err := fixedGenerator().Generate(subjects, 3)
	require.NoError(t, err)
	second, err := fixedGenerator().Generate(subjects, 3)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGenerate_ExamDateTimeOfDayIgnored(t *testing.T) {
	late := time.Date(2026, time.March, 15, 23, 59, 0, 0, time.UTC)
	subjects := []SubjectInput{{Name: "Math", ExamDate: late, Difficulty: Hard}}

	scored := fixedGenerator().Prioritize(subjects, 4)
	assert.Equal(t, 5, scored[0].DaysUntilExam)
}

func TestGenerate_Invariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	difficulties := []Difficulty{Easy, Medium, Hard}

	for run := 0; run < 200; run++ {
		n := 1 + rng.IntN(6)
		subjects := make([]SubjectInput, n)
		for i := range subjects {
			subjects[i] = SubjectInput{
				Name:       string(rune('A' + i)),
				ExamDate:   inDays(rng.IntN(150)),
				Difficulty: difficulties[rng.IntN(3)],
			}
		}
		dailyHours := 0.5 + rng.Float64()*10

		plan, err := fixedGenerator().Generate(subjects, dailyHours)
		require.NoError(t, err)
		require.LessOrEqual(t, plan.TotalDays, MaxDays)

		perDay := make(map[int]time.Duration)
		perDayCount := make(map[int]int)
		for _, s := range plan.Sessions {
			require.True(t, s.StartTime.Before(s.EndTime))
			require.GreaterOrEqual(t, s.DayNumber, 1)
			require.LessOrEqual(t, s.DayNumber, plan.TotalDays)
			perDay[s.DayNumber] += s.Duration()
			perDayCount[s.DayNumber]++
		}

		budget := time.Duration(dailyHours * float64(time.Hour))
		for day, total := range perDay {
			slack := time.Duration(perDayCount[day]) * time.Millisecond
			assert.LessOrEqual(t, total, budget+slack, "run %d day %d", run, day)
		}
	}
}

func TestParseDifficulty(t *testing.T) {
	d, err := ParseDifficulty(" Hard ")
	require.NoError(t, err)
	assert.Equal(t, Hard, d)

	_, err = ParseDifficulty("brutal")
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Equal(t, 1.0, Easy.Multiplier())
	assert.Equal(t, 1.3, Medium.Multiplier())
	assert.Equal(t, 1.6, Hard.Multiplier())
}
