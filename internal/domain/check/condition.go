package check

import "context"

// Cond is a composable condition over a session.
type Cond func(ctx context.Context, s *Session) (bool, error)

// And returns a condition requiring all conditions to match.
func And(conds ...Cond) Cond {
	return func(ctx context.Context, s *Session) (bool, error) {
		for _, c := range conds {
			ok, err := c(ctx, s)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	}
}

// Any returns a condition requiring at least one condition to match.
func Any(conds ...Cond) Cond {
	return func(ctx context.Context, s *Session) (bool, error) {
		for _, c := range conds {
			ok, err := c(ctx, s)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	}
}

// Not returns a condition that inverts the given condition. Evidence
// recorded by the inner condition is kept; inversion only flips the verdict.
func Not(c Cond) Cond {
	return func(ctx context.Context, s *Session) (bool, error) {
		ok, err := c(ctx, s)
		if err != nil {
			return false, err
		}
		return !ok, nil
	}
}
