package chat

import (
	"fmt"
	"strings"

	"hmo-chatbot-backend/models"
)

// historyWindow bounds how many past exchanges are replayed into the
// prompt. History provides continuity only; it never overrides grounding.
const historyWindow = 3

// buildPrompt renders the grounded chat prompt in the requested language.
// Hebrew is the default.
func buildPrompt(query string, profile models.UserProfile, contextBlock string, history []models.Exchange, language string) string {
	if strings.ToLower(language) == "en" {
		return buildEnglishPrompt(query, profile, contextBlock, history)
	}
	return buildHebrewPrompt(query, profile, contextBlock, history)
}

func buildHebrewPrompt(query string, profile models.UserProfile, contextBlock string, history []models.Exchange) string {
	context := contextBlock
	if context == "" {
		context = "לא נמצא מידע רלוונטי בבסיס הידע"
	}
	historyBlock := formatHistory(history, "משתמש", "עוזר")
	if historyBlock == "" {
		historyBlock = "אין היסטוריית שיחה קודמת"
	}

	return fmt.Sprintf(`אתה עוזר AI מומחה לקופות החולים בישראל. ענה אך ורק בעברית.

פרופיל משתמש:
- שם: %s %s
- קופת חולים: %s
- דרגת חברות: %s

מידע רלוונטי מבסיס הידע:
%s

היסטוריית שיחה אחרונה:
%s

שאלת המשתמש:
%s

הנחיות:
1. ענה רק בעברית.
2. התבסס אך ורק על המידע שסופק מבסיס הידע; אל תציג מידע שאינו מבוסס כמידע ממקור.
3. אם המשתמש שייך לקופת חולים מסוימת, התמקד במידע הרלוונטי לו.
4. אם יש הבדלים בין דרגות החברות, הסבר זאת בבירור.
5. אם אין מידע מדויק, אמור זאת בכנות ותן הנחיות כלליות.
6. כלול מספרי טלפון או קישורים אם זמינים.

תשובה:`,
		profile.FirstName, profile.LastName,
		orUnspecifiedHe(profile.HMO), orUnspecifiedHe(profile.MembershipTier),
		context, historyBlock, query)
}

func buildEnglishPrompt(query string, profile models.UserProfile, contextBlock string, history []models.Exchange) string {
	context := contextBlock
	if context == "" {
		context = "No relevant information found in the knowledge base"
	}
	historyBlock := formatHistory(history, "User", "Assistant")
	if historyBlock == "" {
		historyBlock = "No previous history"
	}

	return fmt.Sprintf(`You are an AI assistant for Israeli health funds. Answer strictly in English.

User profile:
- Name: %s %s
- HMO: %s
- Membership tier: %s

Relevant knowledge:
%s

Recent conversation history:
%s

User question:
%s

Instructions:
1. Answer only in English.
2. Ground your answer strictly in the provided knowledge; never present unsupported claims as sourced.
3. If the user belongs to a specific HMO, focus on the relevant details for that HMO.
4. If there are differences between membership tiers, explain clearly.
5. If exact information is missing, say so and give general guidance.
6. Include phone numbers or links if available.

Answer:`,
		profile.FirstName, profile.LastName,
		orUnspecifiedEn(profile.HMO), orUnspecifiedEn(profile.MembershipTier),
		context, historyBlock, query)
}

func formatHistory(history []models.Exchange, userLabel, assistantLabel string) string {
	if len(history) == 0 {
		return ""
	}
	start := len(history) - historyWindow
	if start < 0 {
		start = 0
	}

	var lines []string
	for _, exchange := range history[start:] {
		if exchange.User == "" && exchange.Assistant == "" {
			continue
		}
		lines = append(lines, userLabel+": "+exchange.User)
		lines = append(lines, assistantLabel+": "+exchange.Assistant)
	}
	return strings.Join(lines, "\n")
}

func joinContext(parts []string) string {
	return strings.Join(parts, "\n---\n")
}

func countWords(text string) int {
	return len(strings.Fields(text))
}

func orUnspecifiedHe(v string) string {
	if v == "" {
		return "לא צוין"
	}
	return v
}

func orUnspecifiedEn(v string) string {
	if v == "" {
		return "Not specified"
	}
	return v
}
