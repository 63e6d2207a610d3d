package domain

import (
	"testing"
)

func intPtr(i int) *int { return &i }

func TestDiff(t *testing.T) {
	base := func() *CampaignDraft {
		d := NewDraft()
		d.ID = "d1"
		return d
	}

	tests := []struct {
		name         string
		old          *CampaignDraft
		mutate       func(d *CampaignDraft)
		wantNil      bool
		wantSections []string
		wantStep     *int
		wantSubStep  *int
	}{
		{
			name:    "No Changes",
			old:     base(),
			mutate:  func(d *CampaignDraft) {},
			wantNil: true,
		},
		{
			name:    "Timestamp Only",
			old:     base(),
			mutate:  func(d *CampaignDraft) { d.LastSaved = d.LastSaved.Add(1) },
			wantNil: true,
		},
		{
			name: "Profile Edit",
			old:  base(),
			mutate: func(d *CampaignDraft) {
				d.Profile.CompanyName = "Acme"
			},
			wantSections: []string{SectionProfile},
		},
		{
			name: "Channel And Step",
			old:  base(),
			mutate: func(d *CampaignDraft) {
				d.Channels.Meta.Connected = true
				d.CurrentStep = 2
			},
			wantSections: []string{SectionChannels},
			wantStep:     intPtr(2),
		},
		{
			name: "Image And SubStep",
			old:  base(),
			mutate: func(d *CampaignDraft) {
				d.Image = &ImageRef{ID: "img"}
				d.ProfileSubStep = 4
			},
			wantSections: []string{SectionImage},
			wantSubStep:  intPtr(4),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := tt.old.Clone()
			tt.mutate(next)
			got := Diff(tt.old, next)

			if tt.wantNil {
				if got != nil {
					t.Fatalf("expected no diff, got %+v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("expected diff, got nil")
			}
			if len(got.Sections) != len(tt.wantSections) {
				t.Fatalf("sections = %v, want %v", got.Sections, tt.wantSections)
			}
			for i, s := range tt.wantSections {
				if got.Sections[i] != s {
					t.Errorf("sections[%d] = %s, want %s", i, got.Sections[i], s)
				}
			}
			if (tt.wantStep == nil) != (got.CurrentStep == nil) ||
				(tt.wantStep != nil && *tt.wantStep != *got.CurrentStep) {
				t.Errorf("current step = %v, want %v", got.CurrentStep, tt.wantStep)
			}
			if (tt.wantSubStep == nil) != (got.ProfileSubStep == nil) ||
				(tt.wantSubStep != nil && *tt.wantSubStep != *got.ProfileSubStep) {
				t.Errorf("sub step = %v, want %v", got.ProfileSubStep, tt.wantSubStep)
			}
		})
	}
}

func TestDiff_InitialLoad(t *testing.T) {
	d := NewDraft()
	got := Diff(nil, d)
	if got == nil {
		t.Fatal("expected full diff for initial load")
	}
	if got.CurrentStep == nil || *got.CurrentStep != 1 {
		t.Errorf("expected current step 1, got %v", got.CurrentStep)
	}
	if !got.Touches(SectionProfile) {
		t.Errorf("expected profile section in initial diff, got %v", got.Sections)
	}
}
