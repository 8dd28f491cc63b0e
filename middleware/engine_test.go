package middleware

import "testing"

func TestCompileOrdersByPriorityThenInsertion(t *testing.T) {
	// Scenario 4: three middlewares with priorities 30, 10, 20 and flags
	// PRE_ROUTE. After compile, execution order is 10 -> 20 -> 30.
	e := NewEngine()
	var order []string

	e.Register(Registration{Name: "p30", Priority: 30, Flags: FlagPreRoute, Func: func(c *Context) Result {
		order = append(order, "p30")
		return Continue
	}})
	e.Register(Registration{Name: "p10", Priority: 10, Flags: FlagPreRoute, Func: func(c *Context) Result {
		order = append(order, "p10")
		return Continue
	}})
	e.Register(Registration{Name: "p20", Priority: 20, Flags: FlagPreRoute, Func: func(c *Context) Result {
		order = append(order, "p20")
		return Continue
	}})

	ctx := &Context{ShouldContinue: true, ResponseStatus: 200}
	handlerCalled := false
	e.Execute(ctx, nil, func(*Context) error {
		handlerCalled = true
		return nil
	})

	want := []string{"p10", "p20", "p30"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
	if !handlerCalled {
		t.Fatalf("handler was not invoked")
	}
}

func TestSkipRouteStillRunsPostRoute(t *testing.T) {
	// Scenario 4 (continued): if the middleware at priority 20 returns
	// SKIP_ROUTE, the handler is not invoked but any registered
	// POST_ROUTE middleware still executes.
	e := NewEngine()
	postRan := false

	e.Register(Registration{Name: "skip", Priority: 20, Flags: FlagPreRoute, Func: func(c *Context) Result {
		return SkipRoute
	}})
	e.Register(Registration{Name: "post", Priority: 10, Flags: FlagPostRoute, Func: func(c *Context) Result {
		postRan = true
		return Continue
	}})

	ctx := &Context{ShouldContinue: true, ResponseStatus: 200}
	handlerCalled := false
	e.Execute(ctx, nil, func(*Context) error {
		handlerCalled = true
		return nil
	})

	if handlerCalled {
		t.Fatalf("handler should not run after SKIP_ROUTE")
	}
	if !postRan {
		t.Fatalf("post-route middleware must run even after SKIP_ROUTE")
	}
}

func TestCompileIsIdempotent(t *testing.T) {
	e := NewEngine()
	e.Register(Registration{Name: "a", Priority: 1, Flags: FlagPreRoute, Func: func(c *Context) Result { return Continue }})
	e.Compile()
	first := append([]Registration(nil), e.preRoute...)
	e.Compile()
	second := append([]Registration(nil), e.preRoute...)

	if len(first) != len(second) {
		t.Fatalf("chain length changed across idempotent Compile calls")
	}
	for i := range first {
		if first[i].Name != second[i].Name {
			t.Fatalf("chain order changed across idempotent Compile calls")
		}
	}
}

func TestGlobalPreRouteRunsBeforePerRoute(t *testing.T) {
	e := NewEngine()
	var order []string
	e.Register(Registration{Name: "global", Priority: 1, Flags: FlagPreRoute, Func: func(c *Context) Result {
		order = append(order, "global")
		return Continue
	}})

	routeMW := []Registration{{Name: "route", Priority: 1, Flags: FlagPreRoute, Func: func(c *Context) Result {
		order = append(order, "route")
		return Continue
	}}}

	ctx := &Context{ShouldContinue: true, ResponseStatus: 200}
	e.Execute(ctx, routeMW, func(*Context) error { return nil })

	if len(order) != 2 || order[0] != "global" || order[1] != "route" {
		t.Fatalf("order = %v, want [global route]", order)
	}
}
