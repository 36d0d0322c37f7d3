package session

// PartScore counts answers for one part.
type PartScore struct {
	Correct   int
	Incorrect int
}

// ScoreTracker counts evaluated answers. Totals always equal the sum of the
// per-part entries.
type ScoreTracker struct {
	Correct   int
	Incorrect int
	PerPart   map[string]PartScore
}

func newScoreTracker() ScoreTracker {
	return ScoreTracker{PerPart: make(map[string]PartScore)}
}

// Record counts one answer for part.
func (t *ScoreTracker) Record(part string, correct bool) {
	if t.PerPart == nil {
		t.PerPart = make(map[string]PartScore)
	}
	ps := t.PerPart[part]
	if correct {
		ps.Correct++
		t.Correct++
	} else {
		ps.Incorrect++
		t.Incorrect++
	}
	t.PerPart[part] = ps
}

// Reset clears all counters.
func (t *ScoreTracker) Reset() {
	*t = newScoreTracker()
}

// Answered is the number of scored answers.
func (t ScoreTracker) Answered() int {
	return t.Correct + t.Incorrect
}

func (t ScoreTracker) clone() ScoreTracker {
	out := ScoreTracker{Correct: t.Correct, Incorrect: t.Incorrect, PerPart: make(map[string]PartScore, len(t.PerPart))}
	for k, v := range t.PerPart {
		out.PerPart[k] = v
	}
	return out
}

// PartResult is one row of the summary.
type PartResult struct {
	Part string
	PartScore
}

// Summary holds the data displayed on the summary screen.
type Summary struct {
	TextName  string
	Correct   int
	Incorrect int
	Accuracy  float64
	Parts     []PartResult
}

// BuildSummary creates a Summary in part order. Parts without answers are
// listed with zero counts.
func BuildSummary(s *State) *Summary {
	sum := &Summary{
		TextName:  s.TextName,
		Correct:   s.Score.Correct,
		Incorrect: s.Score.Incorrect,
	}
	for _, name := range s.Parts.Names() {
		sum.Parts = append(sum.Parts, PartResult{Part: name, PartScore: s.Score.PerPart[name]})
	}
	if n := s.Score.Answered(); n > 0 {
		sum.Accuracy = float64(s.Score.Correct) / float64(n)
	}
	return sum
}
