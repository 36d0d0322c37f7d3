package gateway

import "strings"

// Difficulty selects how demanding generated questions are.
type Difficulty string

const (
	DifficultyStandard  Difficulty = "standard"
	DifficultyEasy      Difficulty = "easy"
	DifficultyChallenge Difficulty = "challenge"
)

// ParseDifficulty maps a difficulty name to a Difficulty. Unknown names
// are standard; "simpler" and "hard" are accepted aliases.
func ParseDifficulty(s string) Difficulty {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy", "simpler":
		return DifficultyEasy
	case "challenge", "hard":
		return DifficultyChallenge
	}
	return DifficultyStandard
}

// Valid reports whether d is one of the named difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyStandard, DifficultyEasy, DifficultyChallenge:
		return true
	}
	return false
}

// Next cycles standard -> easy -> challenge.
func (d Difficulty) Next() Difficulty {
	switch d {
	case DifficultyStandard:
		return DifficultyEasy
	case DifficultyEasy:
		return DifficultyChallenge
	}
	return DifficultyStandard
}

// Level is how far simplification goes.
type Level string

const (
	LevelGentle  Level = "gentle"
	LevelDefault Level = "default"
	LevelDeep    Level = "deep"
)

// ParseLevel maps a level name to a Level; unknown names are default.
func ParseLevel(s string) Level {
	switch l := Level(strings.ToLower(strings.TrimSpace(s))); l {
	case LevelGentle, LevelDeep:
		return l
	}
	return LevelDefault
}

func (l Level) Valid() bool {
	switch l {
	case LevelGentle, LevelDefault, LevelDeep:
		return true
	}
	return false
}

// Next cycles gentle -> default -> deep.
func (l Level) Next() Level {
	switch l {
	case LevelGentle:
		return LevelDefault
	case LevelDefault:
		return LevelDeep
	}
	return LevelGentle
}

// Strictness is 1 (gentle), 2 (balanced) or 3 (strict).
type Strictness int

const (
	StrictnessGentle   Strictness = 1
	StrictnessBalanced Strictness = 2
	StrictnessStrict   Strictness = 3
)

// ParseStrictness maps out-of-range values to balanced.
func ParseStrictness(n int) Strictness {
	if n < 1 || n > 3 {
		return StrictnessBalanced
	}
	return Strictness(n)
}

// questionCount scales the number of questions with fragment length.
func questionCount(fragment string) int {
	n := len([]rune(strings.TrimSpace(fragment)))
	switch {
	case n < 300:
		return 2
	case n < 600:
		return 3
	case n < 1000:
		return 4
	}
	return 5
}
