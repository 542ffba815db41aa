package doctor

import (
	"context"

	"github.com/rileyhilliard/ec2ssm/internal/errors"
	"github.com/rileyhilliard/ec2ssm/internal/logger"
)

// Preflight runs checks in order before a session is opened. A failing
// fixable check is fixed when autoFix is set and then run once more. The
// first failure that remains is returned as an environment error; warnings
// are logged and otherwise ignored.
func Preflight(ctx context.Context, checks []Check, autoFix bool, log logger.Logger) error {
	if log == nil {
		log = logger.Noop()
	}

	for _, check := range checks {
		result := check.Run(ctx)
		log.Debug("preflight %s: %s %s", check.Name(), result.Status, result.Message)

		if result.Status == StatusWarn {
			log.Warn("%s", result.Message)
			continue
		}
		if result.Status != StatusFail {
			continue
		}

		if !result.Fixable || !autoFix {
			return failure(result)
		}

		log.Info("fixing %s", check.Name())
		if err := check.Fix(ctx); err != nil {
			return err
		}

		result = check.Run(ctx)
		if result.Status == StatusFail {
			return failure(result)
		}
	}
	return nil
}

func failure(r CheckResult) error {
	return errors.NewEnvironment(r.Message, r.Suggestion)
}
