package llm

import (
	"fmt"
	"strings"

	"github.com/tbourn/go-content-studio/internal/domain"
)

var toneGuidance = map[domain.Tone]string{
	domain.ToneProfessional: "Use professional, formal language.",
	domain.ToneCasual:       "Use casual, friendly language.",
	domain.ToneCreative:     "Be creative and engaging.",
	domain.TonePersuasive:   "Be persuasive and compelling.",
	domain.ToneInformative:  "Be informative and educational.",
}

var lengthGuidance = map[domain.Length]string{
	domain.LengthShort:  "Keep it concise, around 50-100 words.",
	domain.LengthMedium: "Make it moderate length, around 150-250 words.",
	domain.LengthLong:   "Create detailed content, around 300-500 words.",
}

// ToneGuidance returns the instruction sentence for t, or "" if t is unknown.
func ToneGuidance(t domain.Tone) string { return toneGuidance[t] }

// LengthGuidance returns the instruction sentence for l, or "" if l is unknown.
func LengthGuidance(l domain.Length) string { return lengthGuidance[l] }

// BuildPrompt composes the instruction sent to the model for one request.
// contentType is matched against the known kinds case-insensitively; an
// unknown type gets a one-line generic prompt. A tone or length outside the
// closed sets falls back to the kind's default.
func BuildPrompt(contentType, userPrompt string, tone domain.Tone, length domain.Length) string {
	kind, ok := domain.ParseContentKind(contentType)
	if !ok {
		return fmt.Sprintf("Generate %s content about: %s", contentType, userPrompt)
	}
	spec, _ := kind.Spec()

	tg, ok := toneGuidance[tone]
	if !ok {
		tg = toneGuidance[spec.DefaultTone]
	}
	lg, ok := lengthGuidance[length]
	if !ok {
		lg = lengthGuidance[spec.DefaultLength]
	}

	var (
		header       string
		requirements []string
		footer       string
	)
	switch kind {
	case domain.KindLinkedInPost:
		header = "Create a professional LinkedIn post about: "
		requirements = []string{tg, lg,
			"Include relevant hashtags",
			"Make it engaging and valuable for LinkedIn audience",
			"Use appropriate formatting with line breaks",
		}
		footer = "Generate only the post content, no explanations."
	case domain.KindProfessionalEmail:
		header = "Write a professional email about: "
		requirements = []string{tg,
			"Include appropriate subject line",
			"Proper email structure (greeting, body, closing)",
			lg,
			"Clear and concise communication",
		}
		footer = "Generate only the email content."
	case domain.KindAdContent:
		header = "Create compelling ad copy for: "
		requirements = []string{tg, lg,
			"Include attention-grabbing headline",
			"Focus on benefits and call-to-action",
			"Persuasive and engaging",
		}
		footer = "Generate only the ad content."
	case domain.KindConversationalText:
		header = "Generate conversational text about: "
		requirements = []string{tg, lg,
			"Natural, flowing conversation style",
			"Engaging and relatable",
		}
		footer = "Generate only the conversational text."
	case domain.KindBlogPost:
		header = "Write a blog post about: "
		requirements = []string{tg, lg,
			"Include engaging title",
			"Well-structured with introduction, body, conclusion",
			"Informative and valuable content",
		}
		footer = "Generate only the blog post."
	case domain.KindSocialMediaCaption:
		header = "Create a social media caption for: "
		requirements = []string{tg, lg,
			"Engaging and shareable",
			"Include relevant hashtags and emojis",
			"Platform-appropriate",
		}
		footer = "Generate only the caption."
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString(userPrompt)
	b.WriteString("\n\nRequirements:\n")
	for _, r := range requirements {
		b.WriteString("- ")
		b.WriteString(r)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(footer)
	return b.String()
}
