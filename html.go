/*
Copyright © 2026 Clwmm
*/

package main

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
)

// Simple HTML clients, embedded so the binary is self-contained.

const homeHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Liar Among Us</title>
<style>
  body { font-family: system-ui, -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; margin: 2rem; max-width: 30rem; }
  h1 { margin-bottom: 0.5rem; }
  label { display: block; margin-top: 1rem; }
  input { display: block; margin-top: 0.25rem; padding: 0.4rem; width: 100%; box-sizing: border-box; }
  button { margin-top: 1.5rem; padding: 0.5rem 1.5rem; }
  #error { color: #b00; margin-top: 1rem; }
</style>
</head>
<body>
<h1>Liar Among Us</h1>
<p>Join a room. One of you will get a different question. Find out who.</p>
<div id="error"></div>
<form method="POST" action="join">
  <label>Room number
    <input type="number" name="room_id" min="0" required>
  </label>
  <label>Your name
    <input type="text" name="name" maxlength="32" required>
  </label>
  <button type="submit">Join</button>
</form>
<script>
(function() {
  var err = new URLSearchParams(location.search).get('error');
  if (err) {
    document.getElementById('error').textContent = err;
  }
})();
</script>
</body>
</html>
`

const roomHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Liar Among Us</title>
<style>
  body { font-family: system-ui, -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; margin: 2rem; max-width: 34rem; }
  h1 { margin-bottom: 0.25rem; }
  #status { margin-bottom: 1rem; font-size: 0.9rem; color: #555; }
  #players li { padding: 0.15rem 0; }
  .panel { display: none; margin-top: 1rem; padding: 1rem; border: 1px solid #ddd; border-radius: 6px; }
  .panel.active { display: block; }
  button { padding: 0.4rem 1rem; margin-top: 0.5rem; margin-right: 0.5rem; }
  textarea { width: 100%; box-sizing: border-box; min-height: 4rem; }
  .question { font-weight: 600; }
  .liar { color: #b00; font-weight: 600; }
</style>
</head>
<body>
<h1 id="title">Room</h1>
<div id="status">Connecting…</div>
<div><img id="qr" alt="QR code to join" width="160" height="160" hidden></div>
<h2>Players</h2>
<ul id="players"></ul>

<div id="panel-room" class="panel">
  <button id="start">Start game</button>
</div>

<div id="panel-answer" class="panel">
  <p class="question" id="your-question"></p>
  <textarea id="answer"></textarea>
  <button id="submit-answer">Submit answer</button>
  <p id="answered" hidden>Answer submitted. Waiting for the others…</p>
</div>

<div id="panel-discussion" class="panel">
  <p>The real question was:</p>
  <p class="question" id="real-question"></p>
  <p>Discuss, then vote on who got a different one.</p>
  <button id="start-voting">Start voting</button>
</div>

<div id="panel-voting" class="panel">
  <p>Who is the liar?</p>
  <div id="vote-buttons"></div>
  <p id="voted" hidden>Vote submitted. Waiting for the others…</p>
</div>

<div id="panel-results" class="panel">
  <ul id="vote-counts"></ul>
  <p id="tie" hidden>It's a tie. Vote again.</p>
  <button id="show-points" hidden>Show points</button>
  <button id="vote-again" hidden>Vote again</button>
</div>

<div id="panel-points" class="panel">
  <p>The liar was <span class="liar" id="liar"></span>.</p>
  <ul id="points"></ul>
  <button id="next-round">Next round</button>
</div>

<script>
(function() {
  const statusEl = document.getElementById('status');
  const playersEl = document.getElementById('players');

  const name = new URLSearchParams(location.search).get('name') || '';
  const roomPath = location.pathname.replace(/\/$/, '');
  const roomId = roomPath.split('/').pop();
  const basePath = roomPath.replace(/\/room\/\d+$/, '');

  document.getElementById('title').textContent = 'Room ' + roomId;
  const qrEl = document.getElementById('qr');
  qrEl.src = roomPath + '/qr';
  qrEl.hidden = false;

  const proto = (location.protocol === 'https:') ? 'wss://' : 'ws://';
  const ws = new WebSocket(proto + location.host + roomPath + '/ws?name=' + encodeURIComponent(name));

  let players = [];

  function show(panel) {
    document.querySelectorAll('.panel').forEach(function(el) {
      el.classList.toggle('active', el.id === 'panel-' + panel);
    });
  }

  function renderPlayers() {
    playersEl.innerHTML = '';
    players.forEach(function(p) {
      const li = document.createElement('li');
      li.textContent = p;
      playersEl.appendChild(li);
    });
  }

  function renderVoteButtons() {
    const box = document.getElementById('vote-buttons');
    box.innerHTML = '';
    players.forEach(function(p) {
      if (p === name) { return; }
      const btn = document.createElement('button');
      btn.textContent = p;
      btn.onclick = function() {
        ws.send(JSON.stringify({action: 'submit_vote', voter: name, target: p}));
        box.hidden = true;
        document.getElementById('voted').hidden = false;
      };
      box.appendChild(btn);
    });
    box.hidden = false;
    document.getElementById('voted').hidden = true;
  }

  function renderCounts(votes, valid) {
    const list = document.getElementById('vote-counts');
    list.innerHTML = '';
    Object.keys(votes).forEach(function(p) {
      const li = document.createElement('li');
      li.textContent = p + ': ' + votes[p];
      list.appendChild(li);
    });
    document.getElementById('tie').hidden = valid;
    document.getElementById('show-points').hidden = !valid;
    document.getElementById('vote-again').hidden = valid;
  }

  function renderPoints(points, liar, diff) {
    document.getElementById('liar').textContent = liar;
    const list = document.getElementById('points');
    list.innerHTML = '';
    Object.keys(points).forEach(function(p) {
      const li = document.createElement('li');
      const delta = (diff && diff[p]) ? ' (+' + diff[p] + ')' : '';
      li.textContent = p + ': ' + points[p] + delta;
      list.appendChild(li);
    });
  }

  document.getElementById('start').onclick = function() {
    fetch(basePath + '/start_game/' + roomId, {method: 'POST'})
      .then(function(resp) { return resp.json(); })
      .then(function(data) {
        if (data.error) { statusEl.textContent = data.error; }
      });
  };
  document.getElementById('submit-answer').onclick = function() {
    const text = document.getElementById('answer').value.trim();
    if (!text) { return; }
    ws.send(JSON.stringify({action: 'submit_answer', name: name, answer: text}));
    document.getElementById('answered').hidden = false;
  };
  document.getElementById('start-voting').onclick = function() {
    ws.send(JSON.stringify({action: 'start_voting_request'}));
  };
  document.getElementById('show-points').onclick = function() {
    ws.send(JSON.stringify({action: 'show_points_request'}));
  };
  document.getElementById('vote-again').onclick = function() {
    ws.send(JSON.stringify({action: 'vote_again_request'}));
  };
  document.getElementById('next-round').onclick = function() {
    ws.send(JSON.stringify({action: 'next_round_request'}));
  };

  ws.onopen = function() { statusEl.textContent = 'Connected as ' + name + '.'; show('room'); };
  ws.onclose = function() { statusEl.textContent = 'Disconnected. Reload to reconnect.'; };
  ws.onerror = function() { statusEl.textContent = 'Error with WebSocket.'; };

  ws.onmessage = function(event) {
    let msg;
    try { msg = JSON.parse(event.data); } catch (e) { return; }

    switch (msg.action) {
    case 'players':
      players = msg.players || [];
      renderPlayers();
      break;
    case 'start_round':
      document.getElementById('your-question').textContent = msg.question;
      document.getElementById('answer').value = '';
      document.getElementById('answered').hidden = true;
      show('answer');
      break;
    case 'answers_submitted':
      document.getElementById('real-question').textContent = msg.real_question;
      show('discussion');
      break;
    case 'start_voting':
      renderVoteButtons();
      show('voting');
      break;
    case 'votes_submitted':
      renderCounts(msg.votes || {}, msg.valid_voting);
      show('results');
      break;
    case 'show_points':
      renderPoints(msg.points || {}, msg.liar, msg.diff);
      show('points');
      break;
    case 'state':
      players = msg.players || [];
      renderPlayers();
      if (msg.your_question) {
        document.getElementById('your-question').textContent = msg.your_question;
      }
      if (msg.already_answered) {
        document.getElementById('answer').value = msg.your_answer || '';
        document.getElementById('answered').hidden = false;
      }
      switch (msg.state) {
      case 'ANSWER':
        show('answer');
        break;
      case 'DISCUSSION':
        document.getElementById('real-question').textContent = msg.real_question;
        show('discussion');
        break;
      case 'VOTING':
        renderVoteButtons();
        if (msg.already_voted) {
          document.getElementById('vote-buttons').hidden = true;
          document.getElementById('voted').hidden = false;
        }
        show('voting');
        break;
      case 'VOTING_RESULTS':
      case 'VOTE_AGAIN':
        renderCounts(msg.votes || {}, msg.valid_voting);
        show('results');
        break;
      case 'POINTS':
        renderPoints(msg.points || {}, msg.liar, msg.diff);
        show('points');
        break;
      }
      break;
    case 'redirect':
      location.href = msg.target || '/';
      break;
    }
  };
})();
</script>
</body>
</html>
`

func serveHomePage(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)

		_, _ = w.Write([]byte(homeHTML))
	}
}

func serveRoomPage(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		securityHeaders(cfg, w)

		_, _ = w.Write([]byte(roomHTML))
	}
}
