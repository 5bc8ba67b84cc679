/*
Copyright © 2026 Clwmm
*/

package main

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// ValidationError is returned synchronously for a game action whose
// precondition fails. Room state is never mutated on the error path.
type ValidationError struct {
	Reason  string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	ErrNameTaken          = &ValidationError{Reason: "duplicate_name", Message: "That name is already taken in this room."}
	ErrGameStarted        = &ValidationError{Reason: "game_already_started", Message: "The game in this room has already started."}
	ErrNotEnoughPlayers   = &ValidationError{Reason: "not_enough_players", Message: "At least two players are needed to start a round."}
	ErrNotEnoughQuestions = &ValidationError{Reason: "not_enough_content", Message: "Not enough unused questions remain in this room."}
)

func logf(cfg *Config, format string, args ...any) {
	if !cfg.verbose {
		return
	}

	log.Printf("%s | "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}

func newPage(title, body string) string {
	var htmlBody strings.Builder

	htmlBody.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	htmlBody.WriteString(`<style>`)
	htmlBody.WriteString(`html,body,a{display:block;height:100%;width:100%;text-decoration:none;color:inherit;cursor:auto;}</style>`)
	htmlBody.WriteString(fmt.Sprintf("<title>%s</title></head>", title))
	htmlBody.WriteString(fmt.Sprintf("<body><a href=\"/\">%s</a></body></html>", body))

	return htmlBody.String()
}
