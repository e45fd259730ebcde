package level

import "time"

// HintType identifies the kind of content carried by a hint part.
type HintType string

const (
	HintText      HintType = "text"
	HintGPS       HintType = "gps"
	HintVenue     HintType = "venue"
	HintPhoto     HintType = "photo"
	HintAudio     HintType = "audio"
	HintVideo     HintType = "video"
	HintDocument  HintType = "document"
	HintAnimation HintType = "animation"
	HintVoice     HintType = "voice"
	HintVideoNote HintType = "video_note"
	HintContact   HintType = "contact"
	HintSticker   HintType = "sticker"
)

// Valid reports whether the hint type is known.
func (t HintType) Valid() bool {
	switch t {
	case HintText, HintGPS, HintVenue, HintPhoto, HintAudio, HintVideo,
		HintDocument, HintAnimation, HintVoice, HintVideoNote, HintContact, HintSticker:
		return true
	default:
		return false
	}
}

// HintPart is one piece of hint content. Media parts reference stored files by FileID.
type HintPart struct {
	Type      HintType `json:"type" yaml:"type"`
	Text      string   `json:"text,omitempty" yaml:"text,omitempty"`
	FileID    string   `json:"file_id,omitempty" yaml:"file_id,omitempty"`
	Latitude  float64  `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude float64  `json:"longitude,omitempty" yaml:"longitude,omitempty"`
}

// TimeHint is a group of hint parts revealed Time minutes after the level starts.
type TimeHint struct {
	Time int        `json:"time" yaml:"time"`
	Hint []HintPart `json:"hint" yaml:"hint"`
}

// Offset returns the hint offset as a duration.
func (h TimeHint) Offset() time.Duration {
	return time.Duration(h.Time) * time.Minute
}

// Scenario is the playable content of a level.
type Scenario struct {
	ID        string     `json:"id" yaml:"id"`
	Keys      []string   `json:"keys" yaml:"keys"`
	TimeHints []TimeHint `json:"time_hints" yaml:"time-hints"`
}

// Level is a puzzle unit. GameID and NumberInGame are nil while the level is unattached.
type Level struct {
	ID           string   `json:"id"`
	NameID       string   `json:"name_id"`
	AuthorID     string   `json:"author_id"`
	GameID       *string  `json:"game_id,omitempty"`
	NumberInGame *int     `json:"number_in_game,omitempty"`
	Scenario     Scenario `json:"scenario"`
}

// KeySet returns the normalized required keys.
func (l Level) KeySet() KeySet {
	return NewKeySet(l.Scenario.Keys...)
}

// HintsCount returns the number of time hints, including the puzzle at index 0.
func (l Level) HintsCount() int {
	return len(l.Scenario.TimeHints)
}

// Hint returns the hint with the given index.
func (l Level) Hint(n int) (TimeHint, bool) {
	if n < 0 || n >= len(l.Scenario.TimeHints) {
		return TimeHint{}, false
	}
	return l.Scenario.TimeHints[n], true
}

// IsLastHint reports whether n is the index of the final hint.
func (l Level) IsLastHint(n int) bool {
	return n == len(l.Scenario.TimeHints)-1
}

// AvailableHints returns the hints whose offset has elapsed after the given time on level.
func (l Level) AvailableHints(onLevel time.Duration) []TimeHint {
	var hints []TimeHint
	for _, h := range l.Scenario.TimeHints {
		if h.Offset() <= onLevel {
			hints = append(hints, h)
		}
	}
	return hints
}
