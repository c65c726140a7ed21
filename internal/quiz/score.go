package quiz

import "math"

// Result is the summary returned by Score.
type Result struct {
	Correct    int `json:"correct"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// Score evaluates every question against its recorded answer. Unanswered
// questions count as incorrect. It is computed on demand and never cached.
func Score(s *Session) Result {
	res := Result{Total: len(s.questions)}
	for _, q := range s.questions {
		if IsCorrect(q, s.answers[q.ID]) {
			res.Correct++
		}
	}
	res.Percentage = percent(res.Correct, res.Total)
	return res
}

// percent rounds half up like the browser client did; zero when whole is zero.
func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Floor(100*float64(part)/float64(whole) + 0.5))
}

// PerformanceLevel buckets an accuracy percentage.
type PerformanceLevel string

const (
	LevelExcellent PerformanceLevel = "Excellent"
	LevelGood      PerformanceLevel = "Good"
	LevelAverage   PerformanceLevel = "Average"
	LevelNeedsWork PerformanceLevel = "Needs Work"
)

func performanceFor(accuracy int) PerformanceLevel {
	switch {
	case accuracy >= 90:
		return LevelExcellent
	case accuracy >= 75:
		return LevelGood
	case accuracy >= 60:
		return LevelAverage
	default:
		return LevelNeedsWork
	}
}

// InsightStats is the progress dashboard shown next to the quiz.
type InsightStats struct {
	Total       int              `json:"total"`
	Answered    int              `json:"answered"`
	Correct     int              `json:"correct"`
	Remaining   int              `json:"remaining"`
	Accuracy    int              `json:"accuracy"`
	Progress    int              `json:"progress"`
	Performance PerformanceLevel `json:"performance"`
}

// Insights derives progress statistics. Accuracy is measured over answered
// questions only.
func Insights(s *Session) InsightStats {
	st := InsightStats{Total: len(s.questions)}
	for _, q := range s.questions {
		a := s.answers[q.ID]
		if IsComplete(q, a) {
			st.Answered++
		}
		if IsCorrect(q, a) {
			st.Correct++
		}
	}
	st.Remaining = st.Total - st.Answered
	st.Accuracy = percent(st.Correct, st.Answered)
	st.Progress = percent(st.Answered, st.Total)
	st.Performance = performanceFor(st.Accuracy)
	return st
}
