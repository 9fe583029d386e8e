package domain

import "strings"

// ContentKind identifies one of the content formats the studio knows how to
// prompt for. The string value is the display name stored in content_types.
type ContentKind string

const (
	KindLinkedInPost       ContentKind = "LinkedIn Post"
	KindProfessionalEmail  ContentKind = "Professional Email"
	KindAdContent          ContentKind = "Ad Content"
	KindConversationalText ContentKind = "Conversational Text"
	KindBlogPost           ContentKind = "Blog Post"
	KindSocialMediaCaption ContentKind = "Social Media Caption"
)

// Tone is the voice requested for generated text.
type Tone string

const (
	ToneUnspecified  Tone = ""
	ToneProfessional Tone = "professional"
	ToneCasual       Tone = "casual"
	ToneCreative     Tone = "creative"
	TonePersuasive   Tone = "persuasive"
	ToneInformative  Tone = "informative"
)

// Length is the requested size of generated text.
type Length string

const (
	LengthUnspecified Length = ""
	LengthShort       Length = "short"
	LengthMedium      Length = "medium"
	LengthLong        Length = "long"
)

// Theme is the UI theme a user prefers.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Role is the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// KindSpec is one row of the canonical content-kind table.
type KindSpec struct {
	Kind          ContentKind
	Description   string
	DefaultTone   Tone
	DefaultLength Length
}

// kindTable is the single source for seeding content_types and for the
// per-kind fallbacks used when a request omits tone or length.
var kindTable = []KindSpec{
	{KindLinkedInPost, "Professional posts for a LinkedIn audience", ToneProfessional, LengthMedium},
	{KindProfessionalEmail, "Structured business emails with subject line", ToneProfessional, LengthMedium},
	{KindAdContent, "Short ad copy with headline and call-to-action", TonePersuasive, LengthShort},
	{KindConversationalText, "Natural, flowing conversational text", ToneCasual, LengthMedium},
	{KindBlogPost, "Long-form articles with title and structure", ToneInformative, LengthLong},
	{KindSocialMediaCaption, "Shareable captions with hashtags and emojis", ToneCasual, LengthShort},
}

var (
	allTones   = []Tone{ToneProfessional, ToneCasual, ToneCreative, TonePersuasive, ToneInformative}
	allLengths = []Length{LengthShort, LengthMedium, LengthLong}
)

// ContentKinds returns a copy of the canonical kind table in display order.
func ContentKinds() []KindSpec {
	out := make([]KindSpec, len(kindTable))
	copy(out, kindTable)
	return out
}

// Tones lists every known tone.
func Tones() []Tone { return append([]Tone(nil), allTones...) }

// Lengths lists every known length.
func Lengths() []Length { return append([]Length(nil), allLengths...) }

// ParseContentKind matches a content type name case-insensitively.
func ParseContentKind(name string) (ContentKind, bool) {
	name = strings.TrimSpace(name)
	for _, s := range kindTable {
		if strings.EqualFold(string(s.Kind), name) {
			return s.Kind, true
		}
	}
	return "", false
}

// Spec returns the table row for k.
func (k ContentKind) Spec() (KindSpec, bool) {
	for _, s := range kindTable {
		if s.Kind == k {
			return s, true
		}
	}
	return KindSpec{}, false
}

// ParseTone returns the tone for s. Empty input yields ToneUnspecified with ok=true.
func ParseTone(s string) (Tone, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ToneUnspecified, true
	}
	for _, t := range allTones {
		if string(t) == s {
			return t, true
		}
	}
	return ToneUnspecified, false
}

// ParseLength returns the length for s. Empty input yields LengthUnspecified with ok=true.
func ParseLength(s string) (Length, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return LengthUnspecified, true
	}
	for _, l := range allLengths {
		if string(l) == s {
			return l, true
		}
	}
	return LengthUnspecified, false
}

// ParseTheme accepts "light" or "dark".
func ParseTheme(s string) (Theme, bool) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case ThemeLight:
		return ThemeLight, true
	case ThemeDark:
		return ThemeDark, true
	}
	return "", false
}
