// Package session holds the per-visitor page state and the transitions that
// drive the ask/answer cycle.
package session

import (
	"math"
	"strconv"
)

// State is everything one visitor's page remembers between requests.
type State struct {
	ID string `json:"id"`

	Question          string              `json:"question"`
	Response          string              `json:"response"`
	Context           map[string][]string `json:"context"`
	Sources           string              `json:"sources"`
	FollowupQuestions []string            `json:"followup_questions"`

	CustomPrompt        string  `json:"custom_prompt"`
	CustomTemperature   float64 `json:"custom_temperature"`
	TranslationLanguage string  `json:"translation_language"`

	// InputMessageKey names the question input; a new key makes the browser
	// treat the field as fresh instead of echoing stale text.
	InputMessageKey int `json:"input_message_key"`
	// AskedQuestion is non-empty only between a submit and the next Consume.
	AskedQuestion string `json:"asked_question"`
}

// New returns the state a first-time visitor starts with.
func New(id string, temperature float64) *State {
	return &State{
		ID:                id,
		Context:           map[string][]string{},
		FollowupQuestions: []string{},
		CustomTemperature: ClampTemperature(temperature),
		InputMessageKey:   1,
	}
}

// HasAnswer reports whether sources or context are present, which is what
// gates the answer, citation and context sections.
func (s *State) HasAnswer() bool {
	return s.Sources != "" || len(s.Context) > 0
}

// InputName is the form field name of the current question input.
func (s *State) InputName() string {
	return "input" + strconv.Itoa(s.InputMessageKey)
}

// ClampTemperature forces t into [0,1]. NaN becomes 0.
func ClampTemperature(t float64) float64 {
	switch {
	case math.IsNaN(t), t < 0:
		return 0
	case t > 1:
		return 1
	}
	return t
}
