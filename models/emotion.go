// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"errors"
	"strings"
)

// Emotion is one of a fixed set of moods a visitor can vote for.
type Emotion string

const (
	Happy    Emotion = "happy"
	Content  Emotion = "content"
	Neutral  Emotion = "neutral"
	Stressed Emotion = "stressed"
	Sad      Emotion = "sad"
	Angry    Emotion = "angry"
)

// Emotions lists every emotion in display order.
var Emotions = []Emotion{Happy, Content, Neutral, Stressed, Sad, Angry}

var ErrUnknownEmotion = errors.New("unknown emotion")

// ParseEmotion normalizes s and checks it against the closed set
func ParseEmotion(s string) (Emotion, error) {
	e := Emotion(strings.ToLower(strings.TrimSpace(s)))
	if !e.Valid() {
		return "", ErrUnknownEmotion
	}
	return e, nil
}

func (e Emotion) Valid() bool {
	for _, known := range Emotions {
		if e == known {
			return true
		}
	}
	return false
}

// EmptyCounts returns a zero count for every emotion.
func EmptyCounts() map[Emotion]int {
	counts := make(map[Emotion]int, len(Emotions))
	for _, e := range Emotions {
		counts[e] = 0
	}
	return counts
}
