/*
Copyright © 2026 Clwmm
*/

package main

import (
	_ "embed"
	"errors"
	"math/rand/v2"
	"os"
	"strings"
)

//go:embed questions.txt
var defaultQuestions string

// questionPair is the prompt pair drawn for one round. The liar is shown
// the fake question, everyone else the real one.
type questionPair struct {
	real string
	fake string
}

// QuestionDeck holds the immutable question pool. Which indices a room has
// already consumed is tracked per room, not here.
type QuestionDeck struct {
	pool []string
}

func loadQuestionDeck(cfg *Config) (*QuestionDeck, error) {
	raw := defaultQuestions

	if cfg.questions != "" {
		data, err := os.ReadFile(cfg.questions)
		if err != nil {
			return nil, err
		}
		raw = string(data)
	}

	pool := make([]string, 0, strings.Count(raw, "\n")+1)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		pool = append(pool, line)
	}

	if len(pool) < 2 {
		return nil, errors.New("question pool must contain at least two questions")
	}

	return &QuestionDeck{pool: pool}, nil
}

func (d *QuestionDeck) size() int {
	return len(d.pool)
}

// pickPair draws two distinct unused indices uniformly at random, without
// replacement. The caller records both returned indices as used; no index
// is ever handed out twice for the same room.
func (d *QuestionDeck) pickPair(used map[int]bool) (questionPair, int, int, error) {
	available := make([]int, 0, len(d.pool))
	for i := range d.pool {
		if !used[i] {
			available = append(available, i)
		}
	}

	if len(available) < 2 {
		return questionPair{}, 0, 0, ErrNotEnoughQuestions
	}

	i := rand.IntN(len(available))
	realIdx := available[i]
	available[i] = available[len(available)-1]
	available = available[:len(available)-1]

	fakeIdx := available[rand.IntN(len(available))]

	pair := questionPair{
		real: d.pool[realIdx],
		fake: d.pool[fakeIdx],
	}

	return pair, realIdx, fakeIdx, nil
}
