package gateway

import (
	"fmt"
	"strings"

	"numerologyx/internal/types"
)

// Instruction preambles. Each is the fixed system instruction for one
// report type; the per-call payload goes in the user prompt.

const corePreamble = `You are an expert numerologist fluent in both the Pythagorean and the Chaldean systems.
Given a full name and a date of birth, compute the Life Path, Destiny (Expression), Soul Urge and
Personality numbers in BOTH systems. Show every reduction step. Keep master numbers 11, 22 and 33.
For each number give a title, keywords and an interpretation, with optional strengths, challenges
and advice. Add exactly three short quick remedies and a summary that synthesizes both systems.
Respond with JSON only.`

const profilePreamble = `You derive cosmic profile traits from core numerology numbers.
Return one lucky color (name and hex code), one lucky number and one favorable cardinal direction.
Respond with JSON only.`

const predictionsPreamble = `You are a numerologist producing a Personal Year forecast in the Pythagorean system.
Compute the personal year number for the given birth date and forecast year, give its theme and an
overview, then a forecast for each of the twelve months with its personal month number and keywords.
Respond with JSON only.`

const spatialHarmonyPreamble = `You are a Vastu Shastra consultant who applies numerology.
From the user's name and birth date list favorable directions, practical tips per room of the home,
and things to avoid. Respond with JSON only.`

const remediesPreamble = `You recommend Vedic and numerological remedies.
Suggest gemstones with wearing instructions, mantras (Sanskrit, transliteration, benefit), one
rudraksha bead (mukhi and benefit) and karmic actions. Respond with JSON only.`

const dailyPulsePreamble = `You write a short daily numerology pulse.
For the given date compute the universal day number with keywords, and describe the day's cosmic
influence in a title and two or three sentences. Respond with JSON only.`

const chatPreamble = `You are a warm, knowledgeable numerology assistant. Answer questions about numerology,
the Pythagorean and Chaldean systems, Vastu and remedies. Be concise. When current facts are needed,
use search and cite what you used.`

func corePrompt(id types.Identity) string {
	return fmt.Sprintf("Full Name: %s\nDate of Birth: %s", id.FullName, id.DOB)
}

func profilePrompt(c *types.Calculations) string {
	return fmt.Sprintf(`The user's core Pythagorean numbers are:
- Life Path: %d
- Destiny: %d
- Soul Urge: %d
- Personality: %d

Derive their cosmic traits.`,
		c.LifePath.Number, c.Destiny.Number, c.SoulUrge.Number, c.Personality.Number)
}

func predictionsPrompt(id types.Identity, year int) string {
	return fmt.Sprintf("Date of Birth: %s\nForecast Year: %d", id.DOB, year)
}

func identityPrompt(id types.Identity) string {
	return fmt.Sprintf("User Name: %s\nDate of Birth: %s", id.FullName, id.DOB)
}

func dailyPulsePrompt(dateKey string) string {
	return fmt.Sprintf("Today's date is %s.", dateKey)
}

func translatePrompt(payload []byte, languageName, contextLabel string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Translate the values of the following JSON %s into %s.\n\n", contextLabel, languageName)
	b.WriteString("Rules:\n")
	b.WriteString("1. Keep the JSON structure exactly the same.\n")
	b.WriteString("2. Do not translate object keys.\n")
	b.WriteString("3. Translate only string values.\n")
	b.WriteString("4. Leave numbers, dates, color codes and links unchanged.\n")
	b.WriteString("5. Keep personal names as written unless the target language has a common form.\n")
	b.WriteString("6. Return only the JSON document, without markdown.\n\n")
	b.WriteString("Data:\n")
	b.Write(payload)
	return b.String()
}

// ChatInstruction is the system instruction for a conversation. An empty
// contextSummary yields the generic assistant.
func ChatInstruction(contextSummary string) string {
	if contextSummary == "" {
		return chatPreamble
	}
	return chatPreamble + "\n\n--- User's Numerology Context ---\n" + contextSummary
}
