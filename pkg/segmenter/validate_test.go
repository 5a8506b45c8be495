package segmenter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `{
  "summary": "Session debrief covering one player and a team note.",
  "claims": [
    {
      "sourceText": "Niamh's first touch was excellent today",
      "topic": "skill_progress",
      "title": "First touch: excellent in session",
      "description": "Coach praised first touch during today's session.",
      "entityMentions": [
        {"mentionType": "player_name", "rawText": "Niamh", "position": 0}
      ],
      "sentiment": "positive",
      "skillName": "first touch",
      "extractionConfidence": 0.92
    },
    {
      "sourceText": "the under 14s pressed well as a unit",
      "topic": "tactical",
      "title": "U14s pressing as a unit",
      "description": "Team-level pressing observation.",
      "entityMentions": [
        {"mentionType": "team_name", "rawText": "under 14s", "position": 4}
      ],
      "extractionConfidence": 0.8
    }
  ]
}`

func TestParse_ValidResponse(t *testing.T) {
	result, err := Parse(sampleResponse)
	require.NoError(t, err)

	require.Len(t, result.Claims, 2)
	assert.Equal(t, "skill_progress", result.Claims[0].Topic)
	assert.Equal(t, "first touch", result.Claims[0].SkillName)
	assert.InDelta(t, 0.92, result.Claims[0].ExtractionConfidence, 1e-9)
	assert.Equal(t, "team_name", result.Claims[1].EntityMentions[0].MentionType)
}

func TestParse_StripsMarkdownFence(t *testing.T) {
	fenced := "```json\n" + sampleResponse + "\n```"
	result, err := Parse(fenced)
	require.NoError(t, err)
	assert.Len(t, result.Claims, 2)

	bare := "```\n" + sampleResponse + "\n```"
	result, err = Parse(bare)
	require.NoError(t, err)
	assert.Len(t, result.Claims, 2)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{
			name:    "empty response",
			raw:     "   ",
			wantErr: "empty response",
		},
		{
			name:    "not json",
			raw:     "I could not process that transcript.",
			wantErr: "decode response",
		},
		{
			name: "unknown topic",
			raw: `{"summary":"s","claims":[{"sourceText":"x","topic":"gossip","title":"t",
				"description":"d","entityMentions":[],"extractionConfidence":0.5}]}`,
			wantErr: `unknown topic "gossip"`,
		},
		{
			name: "empty sourceText",
			raw: `{"summary":"s","claims":[{"sourceText":"  ","topic":"todo","title":"t",
				"description":"d","entityMentions":[],"extractionConfidence":0.5}]}`,
			wantErr: "empty sourceText",
		},
		{
			name: "empty title",
			raw: `{"summary":"s","claims":[{"sourceText":"x","topic":"todo","title":"",
				"description":"d","entityMentions":[],"extractionConfidence":0.5}]}`,
			wantErr: "empty title",
		},
		{
			name: "confidence above one",
			raw: `{"summary":"s","claims":[{"sourceText":"x","topic":"todo","title":"t",
				"description":"d","entityMentions":[],"extractionConfidence":1.3}]}`,
			wantErr: "out of range",
		},
		{
			name: "negative confidence",
			raw: `{"summary":"s","claims":[{"sourceText":"x","topic":"todo","title":"t",
				"description":"d","entityMentions":[],"extractionConfidence":-0.1}]}`,
			wantErr: "out of range",
		},
		{
			name: "skill rating out of range",
			raw: `{"summary":"s","claims":[{"sourceText":"x","topic":"skill_rating","title":"t",
				"description":"d","skillName":"passing","skillRating":6,"entityMentions":[],
				"extractionConfidence":0.5}]}`,
			wantErr: "skillRating 6",
		},
		{
			name: "unknown severity",
			raw: `{"summary":"s","claims":[{"sourceText":"x","topic":"injury","title":"t",
				"description":"d","severity":"catastrophic","entityMentions":[],
				"extractionConfidence":0.5}]}`,
			wantErr: `unknown severity "catastrophic"`,
		},
		{
			name: "unknown sentiment",
			raw: `{"summary":"s","claims":[{"sourceText":"x","topic":"behavior","title":"t",
				"description":"d","sentiment":"ecstatic","entityMentions":[],
				"extractionConfidence":0.5}]}`,
			wantErr: `unknown sentiment "ecstatic"`,
		},
		{
			name: "unknown mention type",
			raw: `{"summary":"s","claims":[{"sourceText":"x","topic":"todo","title":"t",
				"description":"d","entityMentions":[{"mentionType":"parent_name","rawText":"Mary","position":0}],
				"extractionConfidence":0.5}]}`,
			wantErr: `unknown type "parent_name"`,
		},
		{
			name: "empty mention rawText",
			raw: `{"summary":"s","claims":[{"sourceText":"x","topic":"todo","title":"t",
				"description":"d","entityMentions":[{"mentionType":"player_name","rawText":" ","position":0}],
				"extractionConfidence":0.5}]}`,
			wantErr: "empty rawText",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ZeroSkillRatingMeansUnset(t *testing.T) {
	result := &Result{Claims: []ClaimCandidate{{
		SourceText:           "worked on weak foot",
		Topic:                "skill_progress",
		Title:                "Weak foot work",
		ExtractionConfidence: 0.7,
	}}}
	require.NoError(t, result.Validate())
}

func TestValidate_EmptyClaimsAllowed(t *testing.T) {
	result := &Result{Summary: "Nothing actionable in this note."}
	require.NoError(t, result.Validate())
}
