package pipeline

import (
	"fmt"
	"strings"

	"github.com/pitchside/voicenotes/internal/model"
)

// Coach-facing status messages, sent on the note's source channel. One
// message per user-visible failure state; keep them specific and actionable.
const (
	FeedbackTranscriptionFailed = "Sorry, I couldn't process that voice note. Please try recording again."
	FeedbackTranscriptQuality   = "I couldn't make out enough of that recording to use it. A quieter spot or holding the phone closer usually helps."
	FeedbackNeedsConfirmation   = "I wasn't fully sure I heard that right, so everything from this note is waiting for your confirmation in the app."
	FeedbackExtractionFailed    = "Your note was saved but AI analysis failed. You can view it in the app."
	FeedbackStillProcessing     = "Your note is still being processed. Check the app for updates."

	// feedbackNoInsights closes the results summary when nothing actionable
	// was found.
	feedbackNoInsights = "No actionable insights found."
)

var categoryDisplay = map[model.Topic]string{
	model.TopicSkillProgress: "Skill",
	model.TopicSkillRating:   "Rating",
	model.TopicPerformance:   "Performance",
	model.TopicAttendance:    "Attendance",
	model.TopicTeamCulture:   "Team",
	model.TopicTodo:          "Task",
	model.TopicInjury:        "Injury",
	model.TopicBehavior:      "Behavior",
}

func formatCategory(t model.Topic) string {
	if s, ok := categoryDisplay[t]; ok {
		return s
	}
	return string(t)
}

// FormatResults renders the analysis-complete summary a coach receives after
// their note finishes processing. Long lists are truncated so the message
// stays readable on a phone.
func FormatResults(drafts []model.InsightDraft, unmatched []model.EntityResolution) string {
	var autoApplied, needsReview []model.InsightDraft
	for _, d := range drafts {
		if d.RequiresConfirmation {
			needsReview = append(needsReview, d)
		} else {
			autoApplied = append(autoApplied, d)
		}
	}

	lines := []string{"Analysis complete!", ""}

	if len(autoApplied) > 0 {
		lines = append(lines, fmt.Sprintf("Auto-applied (%d):", len(autoApplied)))
		for i, d := range autoApplied {
			if i == 5 {
				lines = append(lines, fmt.Sprintf("  ...and %d more", len(autoApplied)-5))
				break
			}
			name := d.ResolvedPlayerName
			if name == "" {
				name = "Unknown"
			}
			lines = append(lines, fmt.Sprintf("- %s: %s", name, formatCategory(d.InsightType)))
		}
		lines = append(lines, "")
	}

	if len(needsReview) > 0 {
		lines = append(lines, fmt.Sprintf("Needs review (%d):", len(needsReview)))
		for i, d := range needsReview {
			if i == 3 {
				lines = append(lines, fmt.Sprintf("  ...and %d more", len(needsReview)-3))
				break
			}
			name := d.ResolvedPlayerName
			if name == "" {
				name = "Unknown"
			}
			lines = append(lines, fmt.Sprintf("- %s: %s", name, formatCategory(d.InsightType)))
		}
		lines = append(lines, "")
	}

	if len(unmatched) > 0 {
		lines = append(lines, fmt.Sprintf("Unmatched (%d):", len(unmatched)))
		for i, r := range unmatched {
			if i == 3 {
				lines = append(lines, fmt.Sprintf("  ...and %d more", len(unmatched)-3))
				break
			}
			lines = append(lines, fmt.Sprintf("- '%s' not in roster", r.RawText))
		}
		lines = append(lines, "")
	}

	pending := len(needsReview) + len(unmatched)
	switch {
	case pending > 0:
		lines = append(lines, fmt.Sprintf("Review %d pending in the app.", pending))
	case len(autoApplied) > 0:
		lines = append(lines, "All insights applied!")
	default:
		lines = append(lines, feedbackNoInsights)
	}

	return strings.Join(lines, "\n")
}
