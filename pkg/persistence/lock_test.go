package persistence

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/draftwizard/pkg/adapters/memory"
	"github.com/aretw0/draftwizard/pkg/domain"
)

func TestController_LockLifecycle(t *testing.T) {
	ctrl := NewController(memory.NewStore())
	ctx := context.Background()
	count := 2000

	for i := 0; i < count; i++ {
		d := domain.NewDraft()
		d.ID = fmt.Sprintf("d%d", i)
		_, _ = ctrl.Save(ctx, d)
		_ = ctrl.Delete(ctx, d.ID)
	}

	ctrl.mu.Lock()
	lockCount := len(ctrl.locks)
	ctrl.mu.Unlock()

	if lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Delete", lockCount)
	}
}
