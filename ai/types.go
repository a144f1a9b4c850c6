package ai

// Explanation is the generated justification for one match.
type Explanation struct {
	// Reasoning is a short (about two sentences) explanation of the match.
	Reasoning string

	// Outreach is an optional draft outreach message. Empty unless requested.
	Outreach string
}

// OutreachPreviewNote accompanies every generated outreach draft.
const OutreachPreviewNote = "This is a preview. Review and customize before sending."
