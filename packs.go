package main

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
)

// Question is one trivia item, fully resolved: items without explicit
// choices are synthesized at load time, so every Question has a valid
// correct index before a room can reference it.
type Question struct {
	Prompt      string   `json:"prompt"`
	Choices     []string `json:"choices"`
	AnswerIndex int      `json:"answerIndex"`
}

type packItem struct {
	Prompt      string   `json:"prompt"`
	Front       string   `json:"front"`
	Back        string   `json:"back"`
	Choices     []string `json:"choices"`
	AnswerIndex *int     `json:"answerIndex"`
}

type packFile struct {
	Title string     `json:"title"`
	Items []packItem `json:"items"`
}

type packListing struct {
	File  string `json:"file"`
	Title string `json:"title"`
	Count int    `json:"count"`
}

// buildQuestion resolves one pack item. Flashcard-style items carry a
// prompt/back pair instead of a choice set; these get four synthesized
// choices with the correct answer at index 0.
func buildQuestion(item packItem) (Question, error) {
	prompt := item.Prompt
	if prompt == "" {
		prompt = item.Front
	}

	if len(item.Choices) >= 2 && item.AnswerIndex != nil {
		ix := *item.AnswerIndex
		if ix < 0 || ix >= len(item.Choices) {
			return Question{}, fmt.Errorf("answer index %d out of range for %d choices", ix, len(item.Choices))
		}
		return Question{
			Prompt:      prompt,
			Choices:     item.Choices,
			AnswerIndex: ix,
		}, nil
	}

	if item.Back == "" {
		return Question{}, fmt.Errorf("item has neither a choice set nor an answer to synthesize one from")
	}

	return Question{
		Prompt: prompt,
		Choices: []string{
			item.Back,
			"Not this one",
			"A different answer",
			"Yet another distractor",
		},
		AnswerIndex: 0,
	}, nil
}

// loadPack reads and validates one pack file from dir. The basename of
// file is used, so clients cannot traverse outside the pack directory.
func loadPack(dir, file string) (string, []Question, error) {
	name := filepath.Base(strings.TrimSpace(file))

	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return "", nil, ErrPackNotFound
	}

	var pack packFile
	if err := json.Unmarshal(data, &pack); err != nil {
		return "", nil, fmt.Errorf("pack %s: %w", name, err)
	}

	if len(pack.Items) == 0 {
		return "", nil, ErrEmptyPack
	}

	questions := make([]Question, 0, len(pack.Items))
	for i, item := range pack.Items {
		q, err := buildQuestion(item)
		if err != nil {
			return "", nil, fmt.Errorf("pack %s: item %d: %w", name, i, err)
		}
		questions = append(questions, q)
	}

	title := pack.Title
	if title == "" {
		title = name
	}

	return title, questions, nil
}

// selectQuestions draws count questions from the source set without
// repetition, in shuffled order. A count outside [1, len] is clamped;
// zero means the whole pack.
func selectQuestions(questions []Question, count int) []Question {
	ix := make([]int, len(questions))
	for i := range ix {
		ix[i] = i
	}

	// Fisher-Yates shuffle using crypto/rand
	for i := len(ix) - 1; i > 0; i-- {
		var b [1]byte
		if _, err := rand.Read(b[:]); err != nil {
			continue
		}
		j := int(b[0]) % (i + 1)
		ix[i], ix[j] = ix[j], ix[i]
	}

	if count < 1 || count > len(questions) {
		count = len(questions)
	}

	out := make([]Question, 0, count)
	for _, i := range ix[:count] {
		out = append(out, questions[i])
	}
	return out
}

func writeJSON(cfg *Config, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	securityHeaders(cfg, w)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func servePacks(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		entries, err := os.ReadDir(cfg.packsDir)
		if err != nil {
			writeJSON(cfg, w, http.StatusOK, map[string]any{"packs": []packListing{}})
			return
		}

		packs := make([]packListing, 0, len(entries))
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}

			data, err := os.ReadFile(filepath.Join(cfg.packsDir, entry.Name()))
			if err != nil {
				errs <- err

				continue
			}

			var pack packFile
			if err := json.Unmarshal(data, &pack); err != nil {
				continue
			}

			title := pack.Title
			if title == "" {
				title = entry.Name()
			}

			packs = append(packs, packListing{
				File:  entry.Name(),
				Title: title,
				Count: len(pack.Items),
			})
		}

		writeJSON(cfg, w, http.StatusOK, map[string]any{"packs": packs})

		logf(cfg, "SERVE: Pack listing (%d packs) to %s in %s",
			len(packs),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func servePack(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		name := filepath.Base(p.ByName("file"))

		data, err := os.ReadFile(filepath.Join(cfg.packsDir, name))
		if err != nil {
			writeJSON(cfg, w, http.StatusNotFound, map[string]string{"error": ErrPackNotFound.Error()})
			return
		}

		var pack any
		if err := json.Unmarshal(data, &pack); err != nil {
			writeJSON(cfg, w, http.StatusNotFound, map[string]string{"error": ErrPackNotFound.Error()})
			return
		}

		writeJSON(cfg, w, http.StatusOK, pack)
	}
}
