package relay

import (
	"fmt"
	"strings"

	"faithfeed-relay/internal/domain"
)

func buildAnalysisMessages(verse, verseText string) []domain.ChatMessage {
	return []domain.ChatMessage{{Role: "user", Content: buildAnalysisPrompt(verse, verseText)}}
}

func buildAnalysisPrompt(verse, verseText string) string {
	return strings.Join([]string{
		fmt.Sprintf("You are a thoughtful Bible study assistant. A user wants to understand %s.", verse),
		"",
		"IMPORTANT GUIDELINES:",
		studyGuidelines(),
		"",
		"Verse text:",
		verseText,
		"",
		"Please provide:",
		requestedSections(),
		"",
		outputContract(),
	}, "\n")
}

func studyGuidelines() string {
	return strings.Join([]string{
		"- Provide CONTEXT, not doctrine or definitive interpretation",
		"- Focus on historical background, cultural context, and study questions",
		"- Be humble about limitations - acknowledge when something is debated or uncertain",
		"- Suggest cross-references and related passages",
		"- Frame insights as \"scholars suggest\" or \"possible interpretation\" rather than absolute statements",
		"- Always remind users to verify with their pastor/study group",
		"- Respect denominational differences (don't favor one tradition)",
	}, "\n")
}

func requestedSections() string {
	return strings.Join([]string{
		"1. Historical Context (when written, original audience, cultural background)",
		"2. Key Themes (main ideas in this passage)",
		"3. Cross-References (2-4 related passages with brief explanation why they're connected)",
		"4. Study Questions (3-5 Socratic questions for deeper reflection)",
		"5. Theological Considerations (any denominational differences or scholarly debates about this passage)",
	}, "\n")
}

func outputContract() string {
	return "Format your response in clear sections with headers. Be concise but thorough. " +
		"Remember: you're providing study tools, not authoritative teaching."
}
