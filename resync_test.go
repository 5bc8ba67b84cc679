package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundInProgress(t *testing.T) (*Room, map[string]*Client) {
	t.Helper()

	room, clients := newTestRoom(t, 10, "alice", "bob", "carol")
	mustStartRound(t, room)
	return room, clients
}

func TestSnapshot_AnswerState(t *testing.T) {
	t.Parallel()

	room, _ := roundInProgress(t)
	room.submitAnswer("alice", "my answer")

	snap := room.snapshotLocked("alice")

	assert.Equal(t, "ANSWER", snap.State)
	assert.ElementsMatch(t, []string{"alice", "bob", "carol"}, snap.Players)
	assert.True(t, snap.AlreadyAnswered)
	assert.Equal(t, "my answer", snap.YourAnswer)
	// The real question is not revealed before DISCUSSION.
	assert.Empty(t, snap.RealQuestion)
	assert.Nil(t, snap.Votes)
	assert.Nil(t, snap.Points)
}

func TestSnapshot_LiarSeesFakeQuestion(t *testing.T) {
	t.Parallel()

	room, _ := roundInProgress(t)

	for _, p := range room.players {
		snap := room.snapshotLocked(p.Name)
		if p.Name == room.liar {
			assert.Equal(t, room.questions.fake, snap.YourQuestion)
		} else {
			assert.Equal(t, room.questions.real, snap.YourQuestion)
		}
	}
}

func TestSnapshot_DiscussionRevealsRealQuestion(t *testing.T) {
	t.Parallel()

	room, _ := roundInProgress(t)
	for _, p := range room.players {
		room.submitAnswer(p.Name, "answer")
	}
	require.Equal(t, StateDiscussion, room.state)

	snap := room.snapshotLocked("bob")
	assert.Equal(t, "DISCUSSION", snap.State)
	assert.Equal(t, room.questions.real, snap.RealQuestion)
}

func TestSnapshot_VotingIncludesOwnVote(t *testing.T) {
	t.Parallel()

	room, _ := roundInProgress(t)
	for _, p := range room.players {
		room.submitAnswer(p.Name, "answer")
	}
	room.startVoting()
	room.submitVote("alice", "bob")

	snap := room.snapshotLocked("alice")
	assert.Equal(t, "VOTING", snap.State)
	assert.True(t, snap.AlreadyVoted)
	assert.Equal(t, "bob", snap.YourVote)

	other := room.snapshotLocked("carol")
	assert.False(t, other.AlreadyVoted)
	assert.Empty(t, other.YourVote)
}

func TestSnapshot_VoteAgainCarriesTally(t *testing.T) {
	t.Parallel()

	room, _ := newTestRoom(t, 10, "alice", "bob", "carol", "dave")
	mustStartRound(t, room)
	for _, p := range room.players {
		room.submitAnswer(p.Name, "answer")
	}
	room.startVoting()
	room.submitVote("alice", "bob")
	room.submitVote("bob", "alice")
	room.submitVote("carol", "bob")
	room.submitVote("dave", "alice")
	require.Equal(t, StateVoteAgain, room.state)

	snap := room.snapshotLocked("alice")
	assert.Equal(t, "VOTE_AGAIN", snap.State)
	assert.Equal(t, map[string]int{"alice": 2, "bob": 2}, snap.Votes)
	assert.False(t, snap.ValidVoting)
}

func TestSnapshot_PointsIncludesScoresAndDelta(t *testing.T) {
	t.Parallel()

	room, _ := newTestRoom(t, 10, "liar", "p1", "p2")
	room.state = StateVotingResults
	room.liar = "liar"
	room.votedPlayer = "p2"
	room.votes = map[string]string{"p1": "liar", "p2": "liar", "liar": "p2"}
	room.voteCounts = map[string]int{"liar": 2, "p2": 1}
	room.validVoting = true // set directly; tallied values are retained for resync

	room.showPoints()
	require.Equal(t, StatePoints, room.state)

	snap := room.snapshotLocked("p1")
	assert.Equal(t, "POINTS", snap.State)
	assert.Equal(t, "liar", snap.Liar)
	assert.Equal(t, map[string]int{"liar": 3, "p1": 1, "p2": 1}, snap.Points)
	assert.Equal(t, map[string]int{"liar": 3, "p1": 1, "p2": 1}, snap.Diff)
	assert.Equal(t, map[string]int{"liar": 2, "p2": 1}, snap.Votes)
	assert.True(t, snap.ValidVoting)
}

func TestConnect_MidRoundSendsSnapshot(t *testing.T) {
	t.Parallel()

	room, clients := roundInProgress(t)
	room.submitAnswer("bob", "bob's answer")

	// Simulate bob dropping and coming back.
	room.disconnect(clients["bob"])
	rejoined := newTestClient("bob")
	room.connect(rejoined)

	msgs := drain(rejoined)
	require.Equal(t, 1, countAction(msgs, "state"))

	snap := msgs[0].(StateMessage)
	assert.Equal(t, "ANSWER", snap.State)
	assert.True(t, snap.AlreadyAnswered)
	assert.Equal(t, "bob's answer", snap.YourAnswer)
}
