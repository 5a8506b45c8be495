package segmenter

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

var validTopics = map[string]bool{
	"injury": true, "skill_rating": true, "skill_progress": true,
	"behavior": true, "performance": true, "attendance": true,
	"wellbeing": true, "recovery": true, "development_milestone": true,
	"physical_development": true, "parent_communication": true,
	"tactical": true, "team_culture": true, "todo": true, "session_plan": true,
}

var validMentionTypes = map[string]bool{
	"player_name": true, "team_name": true,
	"group_reference": true, "coach_name": true,
}

var validSeverities = map[string]bool{
	"": true, "low": true, "medium": true, "high": true, "critical": true,
}

var validSentiments = map[string]bool{
	"": true, "positive": true, "neutral": true, "negative": true, "concerned": true,
}

// Parse decodes and validates raw segmentation output. The model sometimes
// wraps JSON in a markdown fence; that is stripped before decoding.
// Everything else that deviates from the schema is a hard error.
func Parse(raw string) (*Result, error) {
	trimmed := stripFence(raw)
	if trimmed == "" {
		return nil, eris.New("segmenter: empty response")
	}

	var result Result
	dec := json.NewDecoder(strings.NewReader(trimmed))
	if err := dec.Decode(&result); err != nil {
		return nil, eris.Wrap(err, "segmenter: decode response")
	}

	if err := result.Validate(); err != nil {
		return nil, err
	}
	return &result, nil
}

// Validate checks the structural schema of a segmentation result.
func (r *Result) Validate() error {
	for i, c := range r.Claims {
		if strings.TrimSpace(c.SourceText) == "" {
			return eris.Errorf("segmenter: claim %d: empty sourceText", i)
		}
		if !validTopics[c.Topic] {
			return eris.Errorf("segmenter: claim %d: unknown topic %q", i, c.Topic)
		}
		if strings.TrimSpace(c.Title) == "" {
			return eris.Errorf("segmenter: claim %d: empty title", i)
		}
		if c.ExtractionConfidence < 0 || c.ExtractionConfidence > 1 {
			return eris.Errorf("segmenter: claim %d: confidence %v out of range", i, c.ExtractionConfidence)
		}
		if c.SkillRating != 0 && (c.SkillRating < 1 || c.SkillRating > 5) {
			return eris.Errorf("segmenter: claim %d: skillRating %d out of range", i, c.SkillRating)
		}
		if !validSeverities[c.Severity] {
			return eris.Errorf("segmenter: claim %d: unknown severity %q", i, c.Severity)
		}
		if !validSentiments[c.Sentiment] {
			return eris.Errorf("segmenter: claim %d: unknown sentiment %q", i, c.Sentiment)
		}
		for j, m := range c.EntityMentions {
			if !validMentionTypes[m.MentionType] {
				return eris.Errorf("segmenter: claim %d mention %d: unknown type %q", i, j, m.MentionType)
			}
			if strings.TrimSpace(m.RawText) == "" {
				return eris.Errorf("segmenter: claim %d mention %d: empty rawText", i, j)
			}
		}
	}
	return nil
}

func stripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}
