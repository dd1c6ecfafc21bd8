/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// Game errors double as the machine-readable `error` field on result
// messages, so their text is stable wire vocabulary.
var (
	ErrAlreadyAnswered = errors.New("already_answered")
	ErrAlreadyJoined   = errors.New("already_joined")
	ErrBadChoice       = errors.New("bad_choice")
	ErrCodeInUse       = errors.New("code_in_use")
	ErrEmptyPack       = errors.New("empty_pack")
	ErrInvalidPhase    = errors.New("invalid_phase")
	ErrNotHost         = errors.New("not_host")
	ErrPackNotFound    = errors.New("pack_not_found")
	ErrPhaseClosed     = errors.New("phase_closed")
	ErrPlayerNotFound  = errors.New("player_not_found")
	ErrRoomNotFound    = errors.New("room_not_found")
	ErrThemeNotFound   = errors.New("theme_not_found")
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
