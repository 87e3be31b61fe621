package models

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Difficulty bucket bounds for content records.
const (
	MinDifficulty = 1
	MaxDifficulty = 8
)

type Option struct {
	Label string `bson:"label" json:"label"`
	Text  string `bson:"text" json:"text"`
}

// ContentRecord is one pre-generated question in the shared pool. Records are
// immutable after insertion; only the usage counter moves, and it is advisory
// (pool-health reporting) so increments may race without harm.
type ContentRecord struct {
	ID          string   `bson:"_id,omitempty" json:"id"`
	Topic       Topic    `bson:"topic" json:"topic"`
	Grade       int      `bson:"grade" json:"grade"`
	Difficulty  int      `bson:"difficulty" json:"difficulty"`
	Mood        string   `bson:"mood,omitempty" json:"mood,omitempty"`
	PassageKey  string   `bson:"passage_key,omitempty" json:"passage_key,omitempty"`
	Passage     string   `bson:"passage,omitempty" json:"passage,omitempty"`
	Question    string   `bson:"question" json:"question"`
	Options     []Option `bson:"options" json:"options"`
	CorrectLabel string  `bson:"correct_label" json:"correct_label"`
	Explanation string   `bson:"explanation" json:"explanation"`

	Hash       string     `bson:"content_hash" json:"content_hash"`
	UsageCount int        `bson:"usage_count" json:"usage_count"`
	Status     string     `bson:"status" json:"status"`
	ExpiresAt  *time.Time `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
	CreatedAt  time.Time  `bson:"created_at" json:"created_at"`
}

// ComputeHash derives the stable content hash from the canonical fields.
// The hash is the record's identity for deduplication, so the input must not
// include mutable fields like the usage counter.
func (c *ContentRecord) ComputeHash() string {
	var b strings.Builder
	b.WriteString(string(c.Topic))
	b.WriteString("|")
	fmt.Fprintf(&b, "%d|%d|", c.Grade, c.Difficulty)
	b.WriteString(c.Question)
	b.WriteString("|")
	for _, opt := range c.Options {
		b.WriteString(opt.Label)
		b.WriteString(":")
		b.WriteString(opt.Text)
		b.WriteString("|")
	}
	b.WriteString(c.CorrectLabel)
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// EnsureHash populates the content hash when the generator did not supply one.
func (c *ContentRecord) EnsureHash() {
	if c.Hash == "" {
		c.Hash = c.ComputeHash()
	}
}

// optionLabels is the canonical label order for a four-option question.
var optionLabels = []string{"A", "B", "C", "D"}

// NormalizeOptions converts the two option shapes the offline generator has
// produced over time into the canonical labeled slice: either a plain JSON
// array of option texts, or an object keyed by letter. The engine only ever
// sees the normalized shape.
func NormalizeOptions(raw json.RawMessage) ([]Option, error) {
	var asArray []string
	if err := json.Unmarshal(raw, &asArray); err == nil {
		if len(asArray) != len(optionLabels) {
			return nil, fmt.Errorf("expected %d options, got %d", len(optionLabels), len(asArray))
		}
		opts := make([]Option, len(asArray))
		for i, text := range asArray {
			opts[i] = Option{Label: optionLabels[i], Text: text}
		}
		return opts, nil
	}

	var asObject map[string]string
	if err := json.Unmarshal(raw, &asObject); err != nil {
		return nil, fmt.Errorf("options must be an array or a letter-keyed object: %w", err)
	}
	if len(asObject) != len(optionLabels) {
		return nil, fmt.Errorf("expected %d options, got %d", len(optionLabels), len(asObject))
	}

	keys := make([]string, 0, len(asObject))
	for k := range asObject {
		keys = append(keys, strings.ToUpper(k))
	}
	sort.Strings(keys)
	opts := make([]Option, 0, len(asObject))
	for i, label := range keys {
		if label != optionLabels[i] {
			return nil, fmt.Errorf("unexpected option label %q", label)
		}
		text, ok := asObject[label]
		if !ok {
			// Generator emitted lowercase keys in some batches.
			text = asObject[strings.ToLower(label)]
		}
		opts = append(opts, Option{Label: label, Text: text})
	}
	return opts, nil
}

// Validate checks the invariants an inserted record must hold.
func (c *ContentRecord) Validate() error {
	if !IsValidTopic(c.Topic) {
		return fmt.Errorf("%w: %q", ErrInvalidTopic, c.Topic)
	}
	if !IsValidGrade(c.Grade) {
		return fmt.Errorf("%w: %d", ErrInvalidGrade, c.Grade)
	}
	if c.Difficulty < MinDifficulty || c.Difficulty > MaxDifficulty {
		return fmt.Errorf("difficulty %d out of range [%d,%d]", c.Difficulty, MinDifficulty, MaxDifficulty)
	}
	if len(c.Options) != len(optionLabels) {
		return fmt.Errorf("expected %d options, got %d", len(optionLabels), len(c.Options))
	}
	valid := false
	for _, opt := range c.Options {
		if opt.Label == c.CorrectLabel {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("correct label %q does not match any option", c.CorrectLabel)
	}
	return nil
}
