package inventory

import (
	"context"

	"github.com/rileyhilliard/ec2ssm/internal/config"
	"github.com/rileyhilliard/ec2ssm/internal/errors"
	"github.com/rileyhilliard/ec2ssm/internal/exec"
	"github.com/rileyhilliard/ec2ssm/internal/logger"
	"github.com/rileyhilliard/ec2ssm/internal/util"
)

// Resolver turns a tag filter into an ordered instance list.
type Resolver struct {
	inv Inventory
	log logger.Logger
}

// NewResolver creates a resolver over inv.
func NewResolver(inv Inventory, log logger.Logger) *Resolver {
	if log == nil {
		log = logger.Noop()
	}
	return &Resolver{inv: inv, log: log}
}

// Resolve returns the running instances matching filter, in API order.
// An empty list is not an error.
func (r *Resolver) Resolve(ctx context.Context, filter config.TagFilter) ([]Instance, error) {
	if filter.Key() == "" {
		return nil, errors.NewUsage("Tag filter has an empty key", "Use -t key or -t key=value.")
	}

	instances, err := r.inv.Instances(ctx, filter)
	if err != nil {
		return nil, err
	}

	r.log.Debug("%d running %s for %s", len(instances),
		util.Pluralize(len(instances), "instance", "instances"), filter)
	for i, inst := range instances {
		r.log.Debug("match %d: %s", i+1, inst.Label())
	}
	return instances, nil
}

// New picks the inventory backend named in cfg.
func New(ctx context.Context, cfg config.Config, runner exec.Runner, log logger.Logger) (Inventory, error) {
	switch cfg.Inventory {
	case config.InventoryCLI:
		return NewCLIInventory(runner, cfg.AWSCLI, cfg.Region, cfg.Profile, log), nil
	case config.InventoryAPI, "":
		return LoadEC2Inventory(ctx, cfg.Region, cfg.Profile, log)
	default:
		return nil, errors.NewUsage("Unknown inventory backend '"+cfg.Inventory+"'",
			"Use --inventory api or --inventory cli.")
	}
}
