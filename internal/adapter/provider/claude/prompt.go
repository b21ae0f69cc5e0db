package claude

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/heartmarshall/mindump-backend/internal/domain"
)

const systemPrompt = `You turn a parent's raw notes, forwarded messages and photos of school notices into one structured proposal.

Output ONLY a JSON object matching this schema:
{
  "title": "<short event or task title>",
  "start_time": "<ISO 8601 date-time, or null if no date is stated or implied>",
  "end_time": "<ISO 8601 date-time, or null>",
  "location": "<place or empty>",
  "category": "<school|health|sports|social|family|work|other>",
  "confidence_score": <number between 0 and 1>,
  "people": [
    {
      "name": "<person mentioned>",
      "relationship": "<child|tutor|coach|friend|...>",
      "category": "<family|school|...>",
      "grade": "<school grade if known>",
      "notes": "<anything worth remembering about them>",
      "existing_person_id": "<id from the known people list when the mention matches, else empty>"
    }
  ],
  "actionable_items": [
    {
      "title": "<thing to do or know>",
      "description": "<details>",
      "kind": "<todo|info>",
      "due_date": "<ISO 8601 date-time or null>",
      "priority": "<low|normal|high|urgent>",
      "category": "<same vocabulary as above>"
    }
  ],
  "missing_info": ["<names of fields you could not determine, e.g. start_time, location>"],
  "transcription": "<verbatim text read from an attached image, else empty>"
}

Rules:
- confidence_score reflects how sure you are that the title and times are right.
- Resolve relative dates ("next Tuesday", "tomorrow") against the current time given below.
- Prefer an existing person id over creating a new person when the name clearly matches.
- Do not invent dates. Leave start_time null instead.
- Output ONLY the JSON, no markdown, no explanations.`

// buildUserPrompt renders everything except media into the user turn.
func buildUserPrompt(req domain.ExtractRequest, loc *time.Location) (string, error) {
	var b strings.Builder

	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	fmt.Fprintf(&b, "Current time: %s (%s)\n\n", now.In(loc).Format(time.RFC3339), now.In(loc).Weekday())

	if len(req.People) > 0 {
		roster, err := json.MarshalIndent(req.People, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal people: %w", err)
		}
		b.WriteString("Known people:\n")
		b.Write(roster)
		b.WriteString("\n\n")
	}

	if len(req.Context) > 0 {
		b.WriteString("Similar earlier notes, most similar first:\n")
		for i, c := range req.Context {
			fmt.Fprintf(&b, "%d. %s\n", i+1, c)
		}
		b.WriteString("\n")
	}

	if req.Text != nil && strings.TrimSpace(*req.Text) != "" {
		b.WriteString("New note:\n")
		b.WriteString(*req.Text)
		b.WriteString("\n")
	} else {
		b.WriteString("The new note is the attached image.\n")
	}

	return b.String(), nil
}
