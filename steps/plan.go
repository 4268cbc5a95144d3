package steps

import (
	"context"

	"github.com/tranvictor/hsocial/executor"
)

type Status string

const (
	Idle    Status = "idle"
	Loading Status = "loading"
	Success Status = "success"
	Error   Status = "error"
)

// Action performs one step. Steps that only validate or read return a
// Result with Success set and no transaction id.
type Action func(ctx context.Context) executor.Result

type Step struct {
	Name   string
	Action Action
}

// Plan is the ordered list of steps for one mutation flow. Plans are built
// once from the flow's inputs; optional steps are simply left out.
type Plan []Step

// With returns p with s appended when include is true.
func (p Plan) With(include bool, s Step) Plan {
	if !include {
		return p
	}
	return append(p, s)
}

func (p Plan) Names() []string {
	names := make([]string, len(p))
	for i, s := range p {
		names[i] = s.Name
	}
	return names
}

func (p Plan) Has(name string) bool {
	for _, s := range p {
		if s.Name == name {
			return true
		}
	}
	return false
}

// Satisfied is an Action for steps that have nothing left to do.
func Satisfied(ctx context.Context) executor.Result {
	return executor.Result{Success: true}
}
