package main

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{}
}

func testDeck(n int) *QuestionDeck {
	pool := make([]string, n)
	for i := range pool {
		pool[i] = fmt.Sprintf("Question %d?", i)
	}
	return &QuestionDeck{pool: pool}
}

func newTestClient(name string) *Client {
	return &Client{
		id:   uuid.NewString(),
		name: name,
		send: make(chan any, 64),
	}
}

// newTestRoom builds a room with the given players joined and one connected
// client per player.
func newTestRoom(t *testing.T, deckSize int, names ...string) (*Room, map[string]*Client) {
	t.Helper()

	room := newRoom(testConfig(), testDeck(deckSize), 1)
	clients := make(map[string]*Client, len(names))

	for _, name := range names {
		require.NoError(t, room.addPlayer(name))
		c := newTestClient(name)
		room.connect(c)
		clients[name] = c
	}

	return room, clients
}

func mustStartRound(t *testing.T, room *Room) {
	t.Helper()

	started, err := room.startRound()
	require.NoError(t, err)
	require.True(t, started)
}

// drain empties a client's send buffer and returns everything captured.
func drain(c *Client) []any {
	var msgs []any
	for {
		select {
		case m, ok := <-c.send:
			if !ok {
				return msgs
			}
			msgs = append(msgs, m)
		default:
			return msgs
		}
	}
}

func actionOf(m any) string {
	switch v := m.(type) {
	case PlayerListMessage:
		return v.Type
	case QuestionMessage:
		return v.Type
	case AnswersMessage:
		return v.Type
	case SimpleMessage:
		return v.Type
	case VotesMessage:
		return v.Type
	case PointsMessage:
		return v.Type
	case RedirectMessage:
		return v.Type
	case StateMessage:
		return v.Type
	}
	return ""
}

func countAction(msgs []any, action string) int {
	n := 0
	for _, m := range msgs {
		if actionOf(m) == action {
			n++
		}
	}
	return n
}
