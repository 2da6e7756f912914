package pipeline

import (
	"context"
)

// Run executes the optimization pipeline over the given initial state
// and returns the final state. Stages run strictly in order; the first
// failure stops the run, so State.Err being nil means every stage
// completed. Context cancellation is surfaced as a failure of the stage
// that would have run next.
func Run(ctx context.Context, deps *Deps, state State) State {
	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			state.fail(stage.name, ErrKindCanceled, "run canceled", err)
			return state
		}

		stage.run(ctx, deps, &state)
		if state.Err != nil {
			return state
		}
	}
	return state
}
