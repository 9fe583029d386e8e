package domain

// PreferencesUpdate is a partial change to UserPreferences. Nil fields keep
// the stored value.
type PreferencesUpdate struct {
	DefaultTone   *Tone
	DefaultLength *Length
	Theme         *Theme
}

// DefaultPreferences returns the values a user starts with.
func DefaultPreferences(userID string) UserPreferences {
	return UserPreferences{
		UserID:        userID,
		DefaultTone:   ToneProfessional,
		DefaultLength: LengthMedium,
		Theme:         ThemeLight,
	}
}

// MergePreferences applies the non-nil fields of upd on top of existing and
// returns the result. existing is not modified.
func MergePreferences(existing UserPreferences, upd PreferencesUpdate) UserPreferences {
	out := existing
	if upd.DefaultTone != nil {
		out.DefaultTone = *upd.DefaultTone
	}
	if upd.DefaultLength != nil {
		out.DefaultLength = *upd.DefaultLength
	}
	if upd.Theme != nil {
		out.Theme = *upd.Theme
	}
	return out
}

// IsEmpty reports whether upd carries no changes.
func (upd PreferencesUpdate) IsEmpty() bool {
	return upd.DefaultTone == nil && upd.DefaultLength == nil && upd.Theme == nil
}
