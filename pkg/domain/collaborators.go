package domain

// Results handed back by the mocked integrations. The engine records them
// verbatim; it never judges their quality.

// GeneratedContent is returned by the AI copywriting collaborator.
type GeneratedContent struct {
	Headline     string `json:"headline"`
	Description  string `json:"description"`
	CallToAction string `json:"callToAction"`
}

// Patch converts the generated copy into a content patch.
func (g GeneratedContent) Patch() ContentPatch {
	return ContentPatch{
		Headline:     &g.Headline,
		Description:  &g.Description,
		CallToAction: &g.CallToAction,
	}
}

// ExportedImage is returned by the design/export collaborator.
type ExportedImage struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	AltText  string `json:"altText"`
	IsCustom bool   `json:"isCustom"`
}

// Ref converts the export result into an image reference.
func (e ExportedImage) Ref() *ImageRef {
	return &ImageRef{
		ID:       e.ID,
		URL:      e.URL,
		AltText:  e.AltText,
		IsCustom: e.IsCustom,
	}
}

// ChannelLink is returned by the channel-connection collaborator.
type ChannelLink struct {
	Connected   bool   `json:"connected"`
	AccountID   string `json:"accountId,omitempty"`
	AccountName string `json:"accountName,omitempty"`
}

// Patch converts the link result into a patch for the named slot. Empty
// account fields are left untouched.
func (l ChannelLink) Patch(name ChannelName) ChannelsPatch {
	cp := ChannelPatch{Connected: &l.Connected}
	if l.AccountID != "" {
		cp.AccountID = &l.AccountID
	}
	if l.AccountName != "" {
		cp.AccountName = &l.AccountName
	}
	return ChannelsPatch{name: cp}
}
