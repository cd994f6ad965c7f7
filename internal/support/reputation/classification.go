package reputation

import (
	"errors"
	"fmt"
	"strings"
)

type Score int

const (
	ScoreBenign         Score = -3
	ScoreProbablyBenign Score = -1
	ScoreSuspicious     Score = 1
	ScoreMalicious      Score = 3
)

var ErrInvalidClassification = errors.New("invalid classification")

type classification struct {
	token string
	score Score
	label string
}

// Ordered by severity; the position doubles as the bucket index.
var vocabulary = []classification{
	{token: "b", score: ScoreBenign, label: "Benign"},
	{token: "pb", score: ScoreProbablyBenign, label: "ProbablyBenign"},
	{token: "s", score: ScoreSuspicious, label: "Suspicious"},
	{token: "m", score: ScoreMalicious, label: "Malicious"},
}

type InvalidClassificationError struct {
	Token string
}

func (e *InvalidClassificationError) Error() string {
	return fmt.Sprintf("invalid classification %s, must be one of (%s)", e.Token, strings.Join(Tokens(), ", "))
}

func (e *InvalidClassificationError) Is(target error) bool {
	return target == ErrInvalidClassification
}

// Classify maps a classification token (b, pb, s, m) to its score.
// Matching is exact and case-sensitive.
func Classify(token string) (Score, error) {
	for _, c := range vocabulary {
		if c.token == token {
			return c.score, nil
		}
	}
	return 0, &InvalidClassificationError{Token: token}
}

func Tokens() []string {
	tokens := make([]string, len(vocabulary))
	for i, c := range vocabulary {
		tokens[i] = c.token
	}
	return tokens
}

func (s Score) Valid() bool {
	_, ok := s.bucket()
	return ok
}

func (s Score) Label() string {
	if idx, ok := s.bucket(); ok {
		return vocabulary[idx].label
	}
	return fmt.Sprintf("Score(%d)", int(s))
}

func (s Score) bucket() (int, bool) {
	for i, c := range vocabulary {
		if c.score == s {
			return i, true
		}
	}
	return 0, false
}
