package extraction

// ConfidenceThreshold is the minimum confidence score at which an extracted
// field is auto-populated onto a task. Scores exactly at the threshold
// populate; scores below it are held back as suggestions.
const ConfidenceThreshold = 0.7

// ShouldPopulate reports whether a field with the given confidence score is
// trusted enough to write onto the task directly.
func ShouldPopulate(confidence float64) bool {
	return confidence >= ConfidenceThreshold
}

// RequiresAttention reports whether a task needs human review after
// extraction. Any low-confidence score among the core organizational fields
// (project, persons, task type, priority) flags the task, regardless of
// whether the other fields extracted cleanly.
func RequiresAttention(r *Result) bool {
	return r.ProjectConfidence < ConfidenceThreshold ||
		r.PersonsConfidence < ConfidenceThreshold ||
		r.TaskTypeConfidence < ConfidenceThreshold ||
		r.PriorityConfidence < ConfidenceThreshold
}
