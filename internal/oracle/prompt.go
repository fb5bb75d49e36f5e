package oracle

import (
	"fmt"
	"strings"
)

// PromptData carries everything a channel prompt can reference. Fields
// irrelevant to a channel stay empty.
type PromptData struct {
	Title         string
	Source        string
	Transcript    string // caption or audio transcript, when text form exists
	Text          string // scraped body or extracted document text
	Links         []string
	PageCount     int
	SearchContext string // rendered search oracle findings
	FrameCount    int
	HasAudio      bool
}

const promptPreamble = `You are a fact-checking analyst. Assess the provided content for misinformation, manipulation and credibility. Respond with STRICT JSON only, no prose outside the JSON object.`

const riskScale = `"risk_level" must be exactly one of: "Verified", "Low Risk", "Medium Risk", "High Risk".`

// VideoPrompt covers direct references, platform downloads and uploaded
// video files: frames plus audio or transcript.
func VideoPrompt(d PromptData) string {
	var b strings.Builder
	b.WriteString(promptPreamble)
	b.WriteString("\n\nAnalyze this video")
	if d.Title != "" {
		fmt.Fprintf(&b, " titled %q", d.Title)
	}
	b.WriteString(".")
	if d.FrameCount > 0 {
		fmt.Fprintf(&b, " You are given %d frames sampled evenly across its duration.", d.FrameCount)
	}
	if d.HasAudio {
		b.WriteString(" The audio track is attached.")
	}
	if d.Transcript != "" {
		fmt.Fprintf(&b, "\n\nTranscript:\n%s", d.Transcript)
	}
	writeSearchContext(&b, d)

	b.WriteString(`

Return JSON with this shape:
{
  "risk_level": "...",
  "summary": "...",
  "context_check": {"status": "...", "details": "..."},
  "audio_visual_analysis": {"key_claims": ["..."], "audio_visual_match": "...", "manipulation_detected": "..."},
  "claim_verification": {"status": "...", "details": "..."},
  "visual_red_flags": ["..."]
}
`)
	b.WriteString(riskScale)
	return b.String()
}

// WebpagePrompt covers scraped articles
func WebpagePrompt(d PromptData) string {
	var b strings.Builder
	b.WriteString(promptPreamble)
	fmt.Fprintf(&b, "\n\nAnalyze this webpage from %s", d.Source)
	if d.Title != "" {
		fmt.Fprintf(&b, ", titled %q", d.Title)
	}
	b.WriteString(".")
	fmt.Fprintf(&b, "\n\nPage text:\n%s", d.Text)
	if len(d.Links) > 0 {
		fmt.Fprintf(&b, "\n\nOutbound links:\n%s", strings.Join(d.Links, "\n"))
	}
	writeSearchContext(&b, d)

	b.WriteString(`

Return JSON with this shape:
{
  "risk_level": "...",
  "summary": "...",
  "source_credibility": {"assessment": "...", "details": "..."},
  "claim_analysis": {"topic_category": "...", "main_claims": ["..."], "claim_types": ["..."], "sensationalism_detected": "..."},
  "fact_verification": {"status": "...", "details": "...", "credible_sources_found": "...", "verification_notes": "..."},
  "content_red_flags": ["..."]
}
`)
	b.WriteString(riskScale)
	return b.String()
}

// DocumentPrompt covers extracted documents; for image-based documents
// the page renders are attached instead of text
func DocumentPrompt(d PromptData) string {
	var b strings.Builder
	b.WriteString(promptPreamble)
	b.WriteString("\n\nAnalyze this document")
	if d.Title != "" {
		fmt.Fprintf(&b, " titled %q", d.Title)
	}
	b.WriteString(".")
	if d.Text != "" {
		fmt.Fprintf(&b, "\n\nDocument text:\n%s", d.Text)
	} else if d.PageCount > 0 {
		fmt.Fprintf(&b, " The document had no machine-readable text; %d page images are attached. Read them.", d.PageCount)
	}
	writeSearchContext(&b, d)

	b.WriteString(`

Return JSON with this shape:
{
  "risk_level": "...",
  "summary": "...",
  "document_assessment": {"document_type": "...", "authenticity_indicators": "..."},
  "claim_verification": {"status": "...", "details": "..."},
  "content_red_flags": ["..."]
}
`)
	b.WriteString(riskScale)
	return b.String()
}

// AudioPrompt covers uploaded audio files
func AudioPrompt(d PromptData) string {
	var b strings.Builder
	b.WriteString(promptPreamble)
	b.WriteString("\n\nAnalyze this audio recording")
	if d.Title != "" {
		fmt.Fprintf(&b, " titled %q", d.Title)
	}
	b.WriteString(".")
	if d.Transcript != "" {
		fmt.Fprintf(&b, "\n\nTranscript:\n%s", d.Transcript)
	} else if d.HasAudio {
		b.WriteString(" The audio is attached.")
	}
	writeSearchContext(&b, d)

	b.WriteString(`

Return JSON with this shape:
{
  "risk_level": "...",
  "summary": "...",
  "audio_analysis": {"key_claims": ["..."], "speaker_assessment": "...", "manipulation_detected": "..."},
  "claim_verification": {"status": "...", "details": "..."},
  "red_flags": ["..."]
}
`)
	b.WriteString(riskScale)
	return b.String()
}

// ImagePrompt covers uploaded images
func ImagePrompt(d PromptData) string {
	var b strings.Builder
	b.WriteString(promptPreamble)
	b.WriteString("\n\nAnalyze the attached image")
	if d.Title != "" {
		fmt.Fprintf(&b, " (%s)", d.Title)
	}
	b.WriteString(" for manipulation, miscaptioning and misleading context.")
	writeSearchContext(&b, d)

	b.WriteString(`

Return JSON with this shape:
{
  "risk_level": "...",
  "summary": "...",
  "visual_analysis": {"content_description": "...", "manipulation_indicators": ["..."]},
  "context_check": {"status": "...", "details": "..."},
  "visual_red_flags": ["..."]
}
`)
	b.WriteString(riskScale)
	return b.String()
}

func writeSearchContext(b *strings.Builder, d PromptData) {
	if d.SearchContext == "" {
		return
	}
	fmt.Fprintf(b, "\n\nCurrent web search context:\n%s", d.SearchContext)
}
