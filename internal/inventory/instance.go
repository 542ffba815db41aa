// Package inventory finds running EC2 instances by tag.
//
// Two backends implement the Inventory interface: EC2Inventory talks to the
// EC2 API through aws-sdk-go-v2, and CLIInventory shells out to
// "aws ec2 describe-instances" for setups where only the CLI is configured.
// Both return instances in the order the API reported them.
package inventory

import (
	"context"
	"fmt"

	"github.com/rileyhilliard/ec2ssm/internal/config"
)

// Instance is one resolved instance.
type Instance struct {
	ID   string
	Name string
}

// Label renders the instance for menus and logs, e.g. "i-0abc (web-1)".
// An instance without a Name tag renders as "i-0abc ()".
func (i Instance) Label() string {
	return fmt.Sprintf("%s (%s)", i.ID, i.Name)
}

// Inventory lists running instances matching a tag filter.
type Inventory interface {
	Instances(ctx context.Context, filter config.TagFilter) ([]Instance, error)
}

// Filter is a backend-neutral describe-instances filter.
type Filter struct {
	Name   string   `json:"Name"`
	Values []string `json:"Values"`
}

// BuildFilters turns a tag filter into describe-instances filters. Only
// running instances are ever returned.
func BuildFilters(tag config.TagFilter) []Filter {
	var filters []Filter
	if value, ok := tag.Value(); ok {
		filters = append(filters, Filter{Name: "tag:" + tag.Key(), Values: []string{value}})
	} else {
		filters = append(filters, Filter{Name: "tag-key", Values: []string{tag.Key()}})
	}
	return append(filters, Filter{Name: "instance-state-name", Values: []string{"running"}})
}
