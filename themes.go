package main

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/julienschmidt/httprouter"
)

// Theme is a cosmetic skin selected at room creation and propagated to
// every player via the room state broadcast.
type Theme struct {
	Name    string         `json:"name"`
	Vars    map[string]any `json:"vars,omitempty"`
	Effects map[string]any `json:"effects,omitempty"`
	Preview map[string]any `json:"preview,omitempty"`
}

type themeListing struct {
	File    string         `json:"file"`
	Name    string         `json:"name"`
	Preview map[string]any `json:"preview"`
}

func listThemes(dir string) []themeListing {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return []themeListing{}
	}

	themes := make([]themeListing, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		theme, err := readTheme(dir, entry.Name())
		if err != nil {
			continue
		}

		name := theme.Name
		if name == "" {
			name = strings.TrimSuffix(entry.Name(), ".json")
		}

		preview := theme.Preview
		if preview == nil {
			preview = map[string]any{}
		}

		themes = append(themes, themeListing{
			File:    entry.Name(),
			Name:    name,
			Preview: preview,
		})
	}

	return themes
}

func readTheme(dir, nameOrFile string) (*Theme, error) {
	name := filepath.Base(strings.TrimSpace(nameOrFile))
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}

	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return nil, ErrThemeNotFound
	}

	var theme Theme
	if err := json.Unmarshal(data, &theme); err != nil {
		return nil, ErrThemeNotFound
	}

	return &theme, nil
}

// loadTheme resolves a requested theme with fallback, first to "classic"
// and then to a bare default, so room creation never fails on themes.
func loadTheme(dir, name string) *Theme {
	if name != "" {
		if theme, err := readTheme(dir, name); err == nil {
			return theme
		}
	}
	if theme, err := readTheme(dir, "classic"); err == nil {
		return theme
	}
	return &Theme{Name: "classic"}
}

func serveThemes(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		writeJSON(cfg, w, http.StatusOK, map[string]any{"themes": listThemes(cfg.themesDir)})
	}
}

func serveTheme(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		theme, err := readTheme(cfg.themesDir, p.ByName("name"))
		if err != nil {
			writeJSON(cfg, w, http.StatusNotFound, map[string]string{"error": ErrThemeNotFound.Error()})
			return
		}

		writeJSON(cfg, w, http.StatusOK, theme)
	}
}
