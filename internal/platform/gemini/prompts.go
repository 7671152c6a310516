package gemini

import (
	"fmt"
	"time"
)

// enrichSystemPrompt is the fixed instruction for the enrichment call. The
// lossless-preservation demand matters: a truncated rewrite silently drops
// entities the extraction step depends on.
const enrichSystemPrompt = `You are a task enrichment assistant. Take the user's informal task description and improve it by:
1. Correcting spelling errors
2. Expanding abbreviations (e.g., 'tmrw' -> 'tomorrow')
3. Making it clearer and more action-oriented
4. Preserving ALL important details (people, dates, projects, context)

CRITICAL: You MUST include the COMPLETE task in your response. Do NOT truncate or shorten the output. Keep ALL names, dates, times, projects, tags, and context.

Return ONLY the improved task description as a complete sentence, nothing else.`

// extractionPromptFormat declares the field schema, the confidence scoring
// guidance and the required JSON shape for the extraction call. The two
// format verbs are the reference time and the task text.
const extractionPromptFormat = `You are a metadata extraction assistant. Extract structured information from task descriptions and provide confidence scores (0.0-1.0) for each field.

Extract the following fields:

1. "project": Project or category name (e.g., "ProjectX", "Work", "Personal")
   - Confidence: 1.0 if explicitly mentioned, 0.5 if implied, 0.0 if none
2. "persons": List of person names mentioned (e.g., ["Sarah Johnson", "Mike Chen"])
   - Confidence: 1.0 if full names, 0.8 if first names only, 0.0 if none
   - Use full names when available
3. "deadline": Original deadline phrase (e.g., "tomorrow at 3pm", "by Friday")
   - Confidence: 1.0 if explicit time/date, 0.7 if relative date, 0.0 if none
   - Preserve original phrasing
4. "task_type": One of: meeting, call, email, review, development, research, administrative, other
   - Confidence: 1.0 if action verb matches (Call -> call), 0.5 if implied, 0.3 for "other"
5. "priority": One of: low, normal, high, urgent
   - Confidence: 1.0 if keyword present (urgent, high priority), 0.5 if implied, 0.3 for "normal"
6. "effort_estimate": Time to complete in minutes (e.g., 30, 60, 120)
   - Confidence: 0.8 if explicitly stated, 0.4 if implied from task type, 0.0 if unknown
7. "dependencies": List of prerequisites or blockers mentioned
   - Confidence: 0.9 if explicit ("after X", "waiting for Y"), 0.0 if none
8. "tags": List of hashtags or keywords (e.g., ["bug", "urgent"])
   - Confidence: 1.0 if hashtags present, 0.7 if keywords extracted, 0.0 if none
9. "chain_of_thought": Brief reasoning for your extractions (1-2 sentences)

Each field X is paired with a numeric "X_confidence" key (effort_estimate pairs with "effort_confidence").

Examples:
- "call mom urgent" -> persons=["mom"], priority="urgent", task_type="call", high confidence
- "Schedule meeting with team tomorrow at 2pm" -> persons=["team"], deadline="tomorrow at 2pm", task_type="meeting", high confidence
- "fix bug" -> task_type="other", project null with low confidence, no persons/deadline

Important:
- Return ONLY valid JSON, no markdown or extra text
- All confidence scores must be between 0.0 and 1.0
- Use null for missing values, empty arrays [] for empty lists
- Person names should be properly capitalized (Title Case)

Current date/time for reference: %s

Extract metadata from this task:

%s`

func extractionPrompt(text string, referenceTime time.Time) string {
	return fmt.Sprintf(extractionPromptFormat, referenceTime.UTC().Format(time.RFC3339), text)
}
