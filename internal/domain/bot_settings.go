package domain

import "time"

const (
	DefaultMaxMessageChars = 500
	// legacy max_message_length was stored in units of 100 characters
	legacyMessageLengthUnit = 100
)

// BotSettings is a single-row table with the Instagram bot configuration.
type BotSettings struct {
	ID               int64     `json:"-" gorm:"primaryKey"`
	BotName          string    `json:"bot_name" gorm:"size:100"`
	GreetingMessage  string    `json:"greeting_message" gorm:"type:text"`
	MaxMessageChars  int       `json:"max_message_chars"`
	MaxMessageLength int       `json:"max_message_length,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (BotSettings) TableName() string { return "bot_settings" }

// ResolveMaxMessageChars applies the migration chain from the deprecated
// field: chars, else length*100, else 500.
func ResolveMaxMessageChars(chars, legacyLength int) int {
	if chars > 0 {
		return chars
	}
	if legacyLength > 0 {
		return legacyLength * legacyMessageLengthUnit
	}
	return DefaultMaxMessageChars
}

// Normalize fills MaxMessageChars from the legacy field when needed.
func (s *BotSettings) Normalize() {
	s.MaxMessageChars = ResolveMaxMessageChars(s.MaxMessageChars, s.MaxMessageLength)
}

// Truncate cuts text to the configured limit, counting runes.
func (s *BotSettings) Truncate(text string) string {
	limit := ResolveMaxMessageChars(s.MaxMessageChars, s.MaxMessageLength)
	r := []rune(text)
	if len(r) <= limit {
		return text
	}
	if limit <= 3 {
		return string(r[:limit])
	}
	return string(r[:limit-3]) + "..."
}
