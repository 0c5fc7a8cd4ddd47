package actionsim

import (
	"context"
	"errors"
	"fmt"
	"scrappey-go/lib/scrappey"
)

var ErrUnboundedLoop = errors.New("actionsim: while without a positive maxAttempts")

// ConditionFunc decides whether a script condition is truthy. `iteration`
// counts how many times the same while loop has already run its body, it is
// always 0 for if steps.
type ConditionFunc func(ctx context.Context, condition string, iteration int) (bool, error)

// StepFunc is called for every atomic step in the order it executes.
type StepFunc func(ctx context.Context, path string, action scrappey.Action) error

type Step struct {
	Path   string
	Action scrappey.Action
}

// Trace is every atomic step executed by Run, in order.
type Trace []Step

// Evaluator walks an action sequence the way the remote browser would. A nil
// Condition treats every condition as false and a nil Step does nothing.
type Evaluator struct {
	Condition ConditionFunc
	Step      StepFunc
}

func (e Evaluator) Run(ctx context.Context, actions []scrappey.Action) (Trace, error) {
	var trace Trace
	err := e.run(ctx, "", actions, &trace)
	return trace, err
}

func (e Evaluator) condition(ctx context.Context, condition string, iteration int) (bool, error) {
	if e.Condition == nil {
		return false, nil
	}
	return e.Condition(ctx, condition, iteration)
}

func (e Evaluator) run(ctx context.Context, prefix string, actions []scrappey.Action, trace *Trace) error {
	for i, action := range actions {
		err := ctx.Err()
		if err != nil {
			return err
		}

		path := fmt.Sprintf("%s[%d]", prefix, i)
		switch action.Type {
		case scrappey.ActionIf:
			ok, err := e.condition(ctx, action.Condition, 0)
			if err != nil {
				return fmt.Errorf("%s: condition: %w", path, err)
			}
			if ok {
				err = e.run(ctx, path+".then", action.Then, trace)
			} else {
				err = e.run(ctx, path+".or", action.Or, trace)
			}
			if err != nil {
				return err
			}
		case scrappey.ActionWhile:
			if action.MaxAttempts <= 0 {
				return fmt.Errorf("%s: %w", path, ErrUnboundedLoop)
			}
			for iteration := 0; iteration < action.MaxAttempts; iteration++ {
				ok, err := e.condition(ctx, action.Condition, iteration)
				if err != nil {
					return fmt.Errorf("%s: condition: %w", path, err)
				}
				if !ok {
					break
				}
				err = e.run(ctx, path+".then", action.Then, trace)
				if err != nil {
					return err
				}
			}
		default:
			if e.Step != nil {
				err := e.Step(ctx, path, action)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
			}
			*trace = append(*trace, Step{Path: path, Action: action})
		}
	}
	return nil
}

// Conditions returns a ConditionFunc that is true for the listed conditions
// and false for everything else. When `maxIterations` is positive a listed
// condition stops holding once a loop has run that many times.
func Conditions(truthy []string, maxIterations int) ConditionFunc {
	set := make(map[string]bool, len(truthy))
	for _, c := range truthy {
		set[c] = true
	}
	return func(_ context.Context, condition string, iteration int) (bool, error) {
		if !set[condition] {
			return false, nil
		}
		if maxIterations > 0 && iteration >= maxIterations {
			return false, nil
		}
		return true, nil
	}
}
