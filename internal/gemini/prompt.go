package gemini

import (
	"fmt"
	"strings"

	"github.com/arihantchoudhary/sasha-pilots/internal/elevenlabs"
)

// SummaryStyle selects the shape of a generated summary.
type SummaryStyle int

const (
	// StyleTakeaways produces a numbered list of the three key takeaways.
	StyleTakeaways SummaryStyle = iota
	// StyleStructured produces a fixed Issue / Goal / Next Steps structure.
	StyleStructured
)

// renderTranscript formats turns role-tagged, one per line.
func renderTranscript(transcript []elevenlabs.TranscriptTurn) string {
	var sb strings.Builder
	for _, t := range transcript {
		fmt.Fprintf(&sb, "[%s]: %s\n", t.Role, t.Message)
	}
	return sb.String()
}

func answerPrompt(transcript []elevenlabs.TranscriptTurn, question string) string {
	var sb strings.Builder
	sb.WriteString("You are given the transcript of a phone call between an AI agent and a user.\n")
	sb.WriteString("Answer the question using only information contained in the transcript. ")
	sb.WriteString("If the transcript does not contain the answer, say so.\n\n")
	sb.WriteString("Transcript:\n")
	sb.WriteString(renderTranscript(transcript))
	sb.WriteString("\nQuestion: ")
	sb.WriteString(question)
	return sb.String()
}

func summaryPrompt(transcript []elevenlabs.TranscriptTurn, style SummaryStyle) string {
	var sb strings.Builder
	switch style {
	case StyleStructured:
		sb.WriteString("Summarize the following call transcript in exactly three sections ")
		sb.WriteString("titled Issue, Goal, and Next Steps. Keep each section to one or two sentences.\n\n")
	default:
		sb.WriteString("Summarize the following call transcript as a numbered list of the ")
		sb.WriteString("3 key takeaways. Keep each takeaway to a single sentence.\n\n")
	}
	sb.WriteString("Transcript:\n")
	sb.WriteString(renderTranscript(transcript))
	return sb.String()
}

func agendaPrompt(discussionContent string) string {
	var sb strings.Builder
	sb.WriteString("Turn the following discussion notes into a short meeting agenda: ")
	sb.WriteString("a title line followed by 3 to 5 bullet points of topics to cover.\n\n")
	sb.WriteString("Discussion:\n")
	sb.WriteString(discussionContent)
	return sb.String()
}

func spaceFactPrompt(transcript []elevenlabs.TranscriptTurn) string {
	var sb strings.Builder
	sb.WriteString("Read the following call transcript and reply with one surprising, ")
	sb.WriteString("verifiable space fact loosely related to something discussed in the call. ")
	sb.WriteString("Reply with the fact alone, no preamble.\n\n")
	sb.WriteString("Transcript:\n")
	sb.WriteString(renderTranscript(transcript))
	return sb.String()
}
