/*
Package draftwizard is the engine behind a multi-step advertising campaign
wizard: a single in-progress campaign draft, the validation gates that decide
when a step may be left, cursor navigation across the campaign wizard and the
company profile sub-wizard, and a persistence layer that autosaves the draft
without ever blocking the user.

# Concept

A draft is edited through a Session. Every edit is a partial patch merged into
the draft; nothing is validated at write time. Gates are pure predicates over
the current draft and only decide whether the cursor may move forward. Moving
back is always allowed. Refused moves report false and change nothing.

Edits are coalesced into one write after a quiet period (2s by default) and a
periodic backstop (30s) catches anything the debounce missed. Failed autosaves
are logged and retried on the next trigger; they never reach the user.

# Key Features

  - Pure validation: gates are recomputed on every call and never cached.
  - Pluggable storage: memory, file or Redis stores behind one key/value port.
  - Encryption at rest and PII redaction as store middleware.
  - Onboarding overview derived from the draft, never fed back into it.
  - Prometheus metrics and structured logging through lifecycle hooks.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/draftwizard"
		"github.com/aretw0/draftwizard/pkg/adapters/file"
		"github.com/aretw0/draftwizard/pkg/domain"
	)

	func main() {
		ctx := context.Background()
		wiz := draftwizard.New(file.New(".draftwizard/drafts"))

		sess := wiz.NewSession()
		defer sess.Close()

		name, org := "Acme AB", "556677-8899"
		sess.UpdateProfile(domain.ProfilePatch{CompanyName: &name, OrgNumber: &org})
		if !sess.AdvanceSubStep(ctx) {
			log.Println("profile page incomplete")
		}

		if err := sess.Save(ctx); err != nil {
			log.Fatal(err)
		}
		log.Println("saved draft", sess.ID())
	}
*/
package draftwizard
