package builtin

import (
	"context"
	"testing"
	"time"

	"github.com/yourusername/ember/middleware"
)

func TestTimeoutPublishesDeadlineContext(t *testing.T) {
	reg := Timeout(0, 50*time.Millisecond)
	ctx := &middleware.Context{ShouldContinue: true, ResponseStatus: 200}

	if got := reg.Func(ctx); got != middleware.Continue {
		t.Fatalf("Func = %v, want Continue", got)
	}

	deadlineCtx, ok := ctx.GetData(DeadlineSlot).(context.Context)
	if !ok {
		t.Fatal("expected DeadlineSlot to hold a context.Context")
	}
	if _, hasDeadline := deadlineCtx.Deadline(); !hasDeadline {
		t.Fatal("expected the published context to carry a deadline")
	}
}
