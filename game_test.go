package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTallyVotes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		votes      map[string]string
		wantCounts map[string]int
		wantWinner string
		wantValid  bool
	}{
		{
			name:       "unique winner",
			votes:      map[string]string{"p1": "a", "p2": "a", "p3": "a", "p4": "b"},
			wantCounts: map[string]int{"a": 3, "b": 1},
			wantWinner: "a",
			wantValid:  true,
		},
		{
			name:       "two-way tie",
			votes:      map[string]string{"p1": "a", "p2": "a", "p3": "b", "p4": "b"},
			wantCounts: map[string]int{"a": 2, "b": 2},
			wantValid:  false,
		},
		{
			name:       "three-way tie",
			votes:      map[string]string{"p1": "a", "p2": "b", "p3": "c"},
			wantCounts: map[string]int{"a": 1, "b": 1, "c": 1},
			wantValid:  false,
		},
		{
			name:       "empty votes",
			votes:      map[string]string{},
			wantCounts: map[string]int{},
			wantValid:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			counts, winner, valid := tallyVotes(tt.votes)
			assert.Equal(t, tt.wantCounts, counts)
			assert.Equal(t, tt.wantWinner, winner)
			assert.Equal(t, tt.wantValid, valid)
		})
	}
}

func TestAddPlayer_DuplicateName(t *testing.T) {
	t.Parallel()

	room, _ := newTestRoom(t, 10, "alice")

	err := room.addPlayer("alice")
	assert.ErrorIs(t, err, ErrNameTaken)
	assert.Len(t, room.players, 1)
}

func TestAddPlayer_GameAlreadyStarted(t *testing.T) {
	t.Parallel()

	room, _ := newTestRoom(t, 10, "alice", "bob")
	mustStartRound(t, room)

	err := room.addPlayer("carol")
	assert.ErrorIs(t, err, ErrGameStarted)
	assert.Len(t, room.players, 2)
}

func TestStartRound_NotEnoughPlayers(t *testing.T) {
	t.Parallel()

	room, _ := newTestRoom(t, 10, "alice")

	_, err := room.startRound()
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)
	assert.Equal(t, StateRoom, room.state)
}

func TestStartRound_NotEnoughQuestions(t *testing.T) {
	t.Parallel()

	room, _ := newTestRoom(t, 2, "alice", "bob")
	room.usedQuestions[0] = true

	_, err := room.startRound()
	assert.ErrorIs(t, err, ErrNotEnoughQuestions)
	assert.Equal(t, StateRoom, room.state)
}

func TestStartRound_AssignsQuestions(t *testing.T) {
	t.Parallel()

	room, clients := newTestRoom(t, 10, "alice", "bob", "carol")
	for _, c := range clients {
		drain(c)
	}

	mustStartRound(t, room)

	assert.Equal(t, StateAnswer, room.state)
	assert.NotEmpty(t, room.liar)
	assert.NotNil(t, room.findPlayerLocked(room.liar))
	assert.Len(t, room.usedQuestions, 2)

	fakes := 0
	for name, c := range clients {
		msgs := drain(c)
		require.Equal(t, 1, countAction(msgs, "start_round"), "player %s", name)

		q := msgs[0].(QuestionMessage).Question
		if name == room.liar {
			assert.Equal(t, room.questions.fake, q)
			fakes++
		} else {
			assert.Equal(t, room.questions.real, q)
		}
	}
	assert.Equal(t, 1, fakes)
}

func TestSubmitAnswer_LastAnswerAdvancesRound(t *testing.T) {
	t.Parallel()

	room, clients := newTestRoom(t, 10, "alice", "bob", "carol")
	mustStartRound(t, room)
	for _, c := range clients {
		drain(c)
	}

	room.submitAnswer("alice", "one")
	room.submitAnswer("bob", "two")
	assert.Equal(t, StateAnswer, room.state)

	room.submitAnswer("carol", "three")
	assert.Equal(t, StateDiscussion, room.state)

	for name, c := range clients {
		msgs := drain(c)
		require.Equal(t, 1, countAction(msgs, "answers_submitted"), "player %s", name)
		assert.Equal(t, room.questions.real, msgs[0].(AnswersMessage).RealQuestion)
	}

	// Stale replays after the transition are ignored.
	room.submitAnswer("alice", "four")
	assert.Equal(t, StateDiscussion, room.state)
	assert.Equal(t, "one", room.answers["alice"])
}

func TestSubmitAnswer_UnknownPlayerIgnored(t *testing.T) {
	t.Parallel()

	room, _ := newTestRoom(t, 10, "alice", "bob")
	mustStartRound(t, room)

	room.submitAnswer("mallory", "hi")
	assert.Empty(t, room.answers)
}

func TestSubmitVote_TieForcesRevote(t *testing.T) {
	t.Parallel()

	room, clients := newTestRoom(t, 10, "alice", "bob", "carol", "dave")
	mustStartRound(t, room)
	for _, p := range room.players {
		room.submitAnswer(p.Name, "answer")
	}
	room.startVoting()
	require.Equal(t, StateVoting, room.state)
	for _, c := range clients {
		drain(c)
	}

	room.submitVote("alice", "bob")
	room.submitVote("bob", "alice")
	room.submitVote("carol", "bob")
	room.submitVote("dave", "alice")

	assert.Equal(t, StateVoteAgain, room.state)
	assert.False(t, room.validVoting)
	assert.Equal(t, map[string]int{"alice": 2, "bob": 2}, room.voteCounts)

	for _, c := range clients {
		msgs := drain(c)
		require.Equal(t, 1, countAction(msgs, "votes_submitted"))
		assert.False(t, msgs[0].(VotesMessage).ValidVoting)
	}

	// The revote keeps the questions and the liar, but clears the votes.
	liar := room.liar
	questions := room.questions
	room.startVoting()
	assert.Equal(t, StateVoting, room.state)
	assert.Empty(t, room.votes)
	assert.Equal(t, liar, room.liar)
	assert.Equal(t, questions, room.questions)

	room.submitVote("alice", "bob")
	room.submitVote("bob", "alice")
	room.submitVote("carol", "bob")
	room.submitVote("dave", "bob")

	assert.Equal(t, StateVotingResults, room.state)
	assert.True(t, room.validVoting)
	assert.Equal(t, "bob", room.votedPlayer)
}

func TestShowPoints_LiarEscapes(t *testing.T) {
	t.Parallel()

	room, clients := newTestRoom(t, 10, "liar", "p1", "p2", "p3")
	room.state = StateVotingResults
	room.liar = "liar"
	room.votedPlayer = "p2"
	room.votes = map[string]string{
		"p1":   "liar",
		"p2":   "p3",
		"p3":   "liar",
		"liar": "p2",
	}
	for _, c := range clients {
		drain(c)
	}

	room.showPoints()

	assert.Equal(t, StatePoints, room.state)
	assert.Equal(t, 3, room.findPlayerLocked("liar").Score)
	assert.Equal(t, 1, room.findPlayerLocked("p1").Score)
	assert.Equal(t, 0, room.findPlayerLocked("p2").Score)
	assert.Equal(t, 1, room.findPlayerLocked("p3").Score)
	assert.Equal(t, map[string]int{"liar": 3, "p1": 1, "p2": 0, "p3": 1}, room.diffPoints)

	msgs := drain(clients["p1"])
	require.Equal(t, 1, countAction(msgs, "show_points"))
	points := msgs[0].(PointsMessage)
	assert.Equal(t, "liar", points.Liar)
	assert.Equal(t, room.diffPoints, points.Diff)
	assert.Equal(t, map[string]int{"liar": 3, "p1": 1, "p2": 0, "p3": 1}, points.Points)
}

func TestShowPoints_LiarCaught(t *testing.T) {
	t.Parallel()

	room, _ := newTestRoom(t, 10, "liar", "p1", "p2", "p3")
	room.state = StateVotingResults
	room.liar = "liar"
	room.votedPlayer = "liar"
	room.votes = map[string]string{
		"p1":   "liar",
		"p2":   "liar",
		"p3":   "p1",
		"liar": "p1",
	}

	room.showPoints()

	// The group caught the liar, so the liar gets nothing; the per-voter
	// rule still rewards p1 and p2 individually.
	assert.Equal(t, 0, room.findPlayerLocked("liar").Score)
	assert.Equal(t, 1, room.findPlayerLocked("p1").Score)
	assert.Equal(t, 1, room.findPlayerLocked("p2").Score)
	assert.Equal(t, 0, room.findPlayerLocked("p3").Score)
}

func TestShowPoints_ReplayIsNoop(t *testing.T) {
	t.Parallel()

	room, clients := newTestRoom(t, 10, "liar", "p1")
	room.state = StateVotingResults
	room.liar = "liar"
	room.votedPlayer = "p1"
	room.votes = map[string]string{"p1": "liar", "liar": "p1"}
	for _, c := range clients {
		drain(c)
	}

	room.showPoints()
	room.showPoints()

	assert.Equal(t, 3, room.findPlayerLocked("liar").Score)
	assert.Equal(t, 1, room.findPlayerLocked("p1").Score)

	msgs := drain(clients["p1"])
	assert.Equal(t, 1, countAction(msgs, "show_points"))
}

func TestNextRound_ReRollsFromPoints(t *testing.T) {
	t.Parallel()

	room, _ := newTestRoom(t, 10, "alice", "bob")
	room.state = StatePoints
	room.answers = map[string]string{"alice": "old", "bob": "old"}
	room.votes = map[string]string{"alice": "bob", "bob": "alice"}

	mustStartRound(t, room)

	assert.Equal(t, StateAnswer, room.state)
	assert.Empty(t, room.answers)
	assert.Empty(t, room.votes)
	assert.Len(t, room.usedQuestions, 2)
}

func TestActionsIgnoredInWrongState(t *testing.T) {
	t.Parallel()

	room, _ := newTestRoom(t, 10, "alice", "bob")

	// Nothing here applies while the room is still gathering players.
	room.submitAnswer("alice", "hi")
	room.startVoting()
	room.submitVote("alice", "bob")
	room.showPoints()

	assert.Equal(t, StateRoom, room.state)
	assert.Empty(t, room.answers)
	assert.Empty(t, room.votes)
	assert.Equal(t, 0, room.findPlayerLocked("alice").Score)

	// startRound mid-round is ignored, not an error.
	mustStartRound(t, room)
	require.Equal(t, StateAnswer, room.state)
	used := len(room.usedQuestions)
	started, err := room.startRound()
	require.NoError(t, err)
	assert.False(t, started)
	assert.Equal(t, used, len(room.usedQuestions))
	assert.Equal(t, StateAnswer, room.state)
}
