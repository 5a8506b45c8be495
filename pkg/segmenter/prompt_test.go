package segmenter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildSystemPrompt_EmbedsContext(t *testing.T) {
	roster := `[{"id":"p1","fullName":"Niamh Kelly"}]`
	teams := `[{"id":"t1","name":"U14 Girls"}]`
	coaches := `[{"userId":"c2","fullName":"Dara Walsh"}]`

	prompt := BuildSystemPrompt(roster, teams, coaches)

	assert.Contains(t, prompt, roster)
	assert.Contains(t, prompt, teams)
	assert.Contains(t, prompt, coaches)

	// Every topic the validator accepts must be offered to the model.
	for topic := range validTopics {
		assert.Contains(t, prompt, topic, "topic %s missing from prompt", topic)
	}
	assert.Contains(t, prompt, "extractionConfidence")
	assert.Contains(t, prompt, "entityMentions")
}
