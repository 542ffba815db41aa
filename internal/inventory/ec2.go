package inventory

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/rileyhilliard/ec2ssm/internal/config"
	"github.com/rileyhilliard/ec2ssm/internal/errors"
	"github.com/rileyhilliard/ec2ssm/internal/logger"
)

// EC2API defines the EC2 operations used by the inventory.
type EC2API interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
}

// EC2Inventory queries the EC2 API directly.
type EC2Inventory struct {
	client EC2API
	region string
	log    logger.Logger
}

// NewEC2Inventory wraps an existing client.
func NewEC2Inventory(client EC2API, region string, log logger.Logger) *EC2Inventory {
	if log == nil {
		log = logger.Noop()
	}
	return &EC2Inventory{client: client, region: region, log: log}
}

// LoadEC2Inventory builds a client from the shared AWS config chain
// (environment, ~/.aws/config, SSO cache) for region and optional profile.
func LoadEC2Inventory(ctx context.Context, region, profile string, log logger.Logger) (*EC2Inventory, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrInventory,
			"Couldn't load AWS configuration",
			"Check ~/.aws/config and the profile passed with -p.")
	}

	return NewEC2Inventory(ec2.NewFromConfig(cfg), region, log), nil
}

// Instances pages through DescribeInstances and flattens reservations in
// order.
func (e *EC2Inventory) Instances(ctx context.Context, filter config.TagFilter) ([]Instance, error) {
	input := &ec2.DescribeInstancesInput{Filters: toEC2Filters(BuildFilters(filter))}
	e.log.Debug("describe-instances in %s with tag %s", e.region, filter.String())

	var instances []Instance
	paginator := ec2.NewDescribeInstancesPaginator(e.client, input)
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrInventory,
				"Couldn't list instances in "+e.region,
				"Check your AWS credentials and that the region is right.")
		}

		for _, reservation := range output.Reservations {
			for _, inst := range reservation.Instances {
				instances = append(instances, Instance{
					ID:   aws.ToString(inst.InstanceId),
					Name: nameTag(inst.Tags),
				})
			}
		}
	}

	e.log.Debug("found %d instance(s)", len(instances))
	return instances, nil
}

func toEC2Filters(filters []Filter) []types.Filter {
	out := make([]types.Filter, 0, len(filters))
	for _, f := range filters {
		out = append(out, types.Filter{Name: aws.String(f.Name), Values: f.Values})
	}
	return out
}

func nameTag(tags []types.Tag) string {
	for _, tag := range tags {
		if aws.ToString(tag.Key) == config.NameTagKey {
			return aws.ToString(tag.Value)
		}
	}
	return ""
}
