package main

import (
	"math/rand/v2"
)

// Round progression:
//
//	ROOM → ANSWER → DISCUSSION → VOTING → VOTING_RESULTS → POINTS → ANSWER → ...
//	                                   ↘ VOTE_AGAIN → VOTING (on a tie)
//
// Each transition below checks the current state first and silently ignores
// actions that do not apply, so duplicate or stale client requests are
// harmless. The whole check-mutate-broadcast sequence of every method holds
// the room lock, which is what makes the automatic transitions ("everyone
// has answered", "everyone has voted") fire exactly once.

// startRound begins a new round: a fresh question pair, a freshly rolled
// liar, cleared answers and votes. Valid from ROOM (first round) and POINTS
// (every following round). The returned bool reports whether a round
// actually started; a wrong-state request is ignored, not an error.
func (r *Room) startRound() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateRoom && r.state != StatePoints {
		return false, nil
	}

	if len(r.players) < 2 {
		return false, ErrNotEnoughPlayers
	}

	pair, realIdx, fakeIdx, err := r.deck.pickPair(r.usedQuestions)
	if err != nil {
		return false, err
	}

	r.usedQuestions[realIdx] = true
	r.usedQuestions[fakeIdx] = true
	r.questions = pair
	r.liar = r.players[rand.IntN(len(r.players))].Name
	r.answers = make(map[string]string)
	r.votes = make(map[string]string)
	r.state = StateAnswer

	logf(r.cfg, "GAME: Round started in room %d with %d players", r.id, len(r.players))

	for client := range r.clients {
		question := pair.real
		if client.name == r.liar {
			question = pair.fake
		}
		r.sendLocked(client, QuestionMessage{
			Type:     "start_round",
			Question: question,
		})
	}

	return true, nil
}

// submitAnswer records one player's answer. The moment the last player's
// answer lands, the room moves to DISCUSSION and the real question is
// revealed to everyone.
func (r *Room) submitAnswer(name, answer string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateAnswer {
		return
	}
	if r.findPlayerLocked(name) == nil {
		return
	}

	r.answers[name] = answer

	if len(r.answers) != len(r.players) {
		return
	}

	r.state = StateDiscussion
	r.broadcastLocked(AnswersMessage{
		Type:         "answers_submitted",
		RealQuestion: r.questions.real,
	})
}

// startVoting opens (or, after a tie, reopens) the vote. Votes are cleared
// on every entry; the question pair and the liar stay as they are.
func (r *Room) startVoting() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateDiscussion && r.state != StateVoteAgain {
		return
	}

	r.votes = make(map[string]string)
	r.state = StateVoting
	r.broadcastLocked(SimpleMessage{Type: "start_voting"})
}

// submitVote records one player's accusation. The last vote triggers the
// tally: a unique winner moves the room to VOTING_RESULTS, a tie to
// VOTE_AGAIN.
func (r *Room) submitVote(voter, target string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateVoting {
		return
	}
	if r.findPlayerLocked(voter) == nil || r.findPlayerLocked(target) == nil {
		return
	}

	r.votes[voter] = target

	if len(r.votes) != len(r.players) {
		return
	}

	counts, winner, valid := tallyVotes(r.votes)
	r.voteCounts = counts
	r.validVoting = valid

	if valid {
		r.votedPlayer = winner
		r.state = StateVotingResults
	} else {
		r.state = StateVoteAgain
	}

	logf(r.cfg, "GAME: Votes tallied in room %d (valid=%t)", r.id, valid)

	r.broadcastLocked(VotesMessage{
		Type:        "votes_submitted",
		Votes:       counts,
		ValidVoting: valid,
	})
}

// tallyVotes turns a voter→accused map into per-player counts and decides
// whether a unique winner exists. Any tie, two-way or wider, is invalid; no
// tie-breaking is applied.
func tallyVotes(votes map[string]string) (map[string]int, string, bool) {
	counts := make(map[string]int, len(votes))
	for _, accused := range votes {
		counts[accused]++
	}

	maxVotes := 0
	for _, n := range counts {
		if n > maxVotes {
			maxVotes = n
		}
	}

	winner := ""
	top := 0
	for name, n := range counts {
		if n == maxVotes {
			top++
			winner = name
		}
	}

	if maxVotes == 0 || top != 1 {
		return counts, "", false
	}
	return counts, winner, true
}

// showPoints applies the scoring rule and reveals the liar:
//   - the liar scores 3 if the group's winner was someone else, and
//   - independently, every player whose own vote named the liar scores 1.
//
// Replays are no-ops since the room has left VOTING_RESULTS by then, so
// scoring is never applied twice for one round.
func (r *Room) showPoints() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateVotingResults {
		return
	}

	diff := make(map[string]int, len(r.players))
	for _, p := range r.players {
		diff[p.Name] = 0
	}

	if r.votedPlayer != r.liar {
		diff[r.liar] += 3
	}
	for _, p := range r.players {
		if p.Name == r.liar {
			continue
		}
		if r.votes[p.Name] == r.liar {
			diff[p.Name]++
		}
	}

	for _, p := range r.players {
		p.Score += diff[p.Name]
	}

	r.diffPoints = diff
	r.state = StatePoints

	logf(r.cfg, "GAME: Points shown in room %d (liar %q, accused %q)", r.id, r.liar, r.votedPlayer)

	r.broadcastLocked(PointsMessage{
		Type:   "show_points",
		Points: r.pointsLocked(),
		Liar:   r.liar,
		Diff:   diff,
	})
}
