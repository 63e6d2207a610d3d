/*
Package domain contains the core model of the draft wizard.

It defines the campaign draft aggregate, the additive patches that mutate it,
the derived onboarding progress state, and the persisted record format. This
package is kept pure and free of I/O, following Hexagonal Architecture
principles.

# Key Entities

  - CampaignDraft: the in-progress campaign (profile, channels, content, image, budget, cursors).
  - ProfilePatch, ChannelsPatch, ContentPatch, BudgetPatch: shallow, additive updates.
  - OnboardingState: dashboard progress derived from a draft.
  - LifecycleHooks: callbacks for observing transitions and persistence.
*/
package domain
