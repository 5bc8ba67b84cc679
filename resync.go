package main

// StateMessage is the full resync snapshot sent to a connection joining or
// rejoining a room that is already past the lobby. It carries everything
// the client needs to resume mid-round without replaying history.
type StateMessage struct {
	Type            string         `json:"action"` // "state"
	State           string         `json:"state"`
	Players         []string       `json:"players"`
	YourQuestion    string         `json:"your_question,omitempty"`
	AlreadyAnswered bool           `json:"already_answered"`
	YourAnswer      string         `json:"your_answer,omitempty"`
	AlreadyVoted    bool           `json:"already_voted"`
	YourVote        string         `json:"your_vote,omitempty"`
	RealQuestion    string         `json:"real_question,omitempty"`
	Votes           map[string]int `json:"votes,omitempty"`
	ValidVoting     bool           `json:"valid_voting"`
	Points          map[string]int `json:"points,omitempty"`
	Liar            string         `json:"liar,omitempty"`
	Diff            map[string]int `json:"diff,omitempty"`
}

// snapshotLocked builds the resync snapshot for one viewer. The viewer sees
// their own question (the fake one if they are the liar), whether they have
// already answered or voted this round, the real question once it has been
// revealed, and in the result states the last tally, scores and delta.
func (r *Room) snapshotLocked(name string) StateMessage {
	msg := StateMessage{
		Type:    "state",
		State:   r.state.String(),
		Players: r.playerNamesLocked(),
	}

	msg.YourQuestion = r.questions.real
	if name == r.liar {
		msg.YourQuestion = r.questions.fake
	}

	if answer, ok := r.answers[name]; ok {
		msg.AlreadyAnswered = true
		msg.YourAnswer = answer
	}
	if vote, ok := r.votes[name]; ok {
		msg.AlreadyVoted = true
		msg.YourVote = vote
	}

	if r.state >= StateDiscussion {
		msg.RealQuestion = r.questions.real
	}

	switch r.state {
	case StateVotingResults, StateVoteAgain, StatePoints:
		msg.Votes = r.voteCounts
		msg.ValidVoting = r.validVoting
	}

	if r.state == StatePoints {
		msg.Points = r.pointsLocked()
		msg.Liar = r.liar
		msg.Diff = r.diffPoints
	}

	return msg
}
