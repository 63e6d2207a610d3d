package draftwizard_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/draftwizard"
	"github.com/aretw0/draftwizard/pkg/adapters/memory"
	"github.com/aretw0/draftwizard/pkg/domain"
	"github.com/aretw0/draftwizard/pkg/persistence"
	"github.com/aretw0/draftwizard/pkg/validation"
)

// ExampleNew walks a draft through the first profile page with an in-memory
// store.
func ExampleNew() {
	ctx := context.Background()
	wiz := draftwizard.New(memory.NewStore(), draftwizard.WithAutosave(persistence.WithBackstop(0)))

	sess := wiz.NewSession()
	defer sess.Close()

	name := "Acme AB"
	sess.UpdateProfile(domain.ProfilePatch{CompanyName: &name})
	fmt.Println("advance without org number:", sess.AdvanceSubStep(ctx))
	fmt.Println("missing:", validation.MissingProfileFields(sess.Draft().Profile, 1))

	org := "556677-8899"
	sess.UpdateProfile(domain.ProfilePatch{OrgNumber: &org})
	fmt.Println("advance with org number:", sess.AdvanceSubStep(ctx))
	fmt.Println("sub-step:", sess.Draft().ProfileSubStep)

	if err := sess.Save(ctx); err != nil {
		log.Fatal(err)
	}
	stored := wiz.Controller().Load(ctx, sess.ID())
	fmt.Println("stored company:", stored.Profile.CompanyName)

	// Output:
	// advance without org number: false
	// missing: [orgNumber]
	// advance with org number: true
	// sub-step: 2
	// stored company: Acme AB
}
