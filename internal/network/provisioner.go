// Package network creates the VPC resources a Fargate machine needs.
package network

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/rs/zerolog"

	"github.com/edvin/machines/internal/model"
	"github.com/edvin/machines/internal/platform"
)

// FallbackSubnetCIDR is used when the VPC has no subnet yet.
const FallbackSubnetCIDR = "172.0.0.0/16"

const anyIPv4 = "0.0.0.0/0"

// EC2API is the subset of the EC2 client the provisioner uses.
type EC2API interface {
	DescribeSubnets(ctx context.Context, in *ec2.DescribeSubnetsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSubnetsOutput, error)
	CreateSubnet(ctx context.Context, in *ec2.CreateSubnetInput, optFns ...func(*ec2.Options)) (*ec2.CreateSubnetOutput, error)
	CreateSecurityGroup(ctx context.Context, in *ec2.CreateSecurityGroupInput, optFns ...func(*ec2.Options)) (*ec2.CreateSecurityGroupOutput, error)
	AuthorizeSecurityGroupIngress(ctx context.Context, in *ec2.AuthorizeSecurityGroupIngressInput, optFns ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupIngressOutput, error)
	AuthorizeSecurityGroupEgress(ctx context.Context, in *ec2.AuthorizeSecurityGroupEgressInput, optFns ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupEgressOutput, error)
}

// Provisioner allocates a subnet and a dedicated security group per
// machine inside one VPC.
type Provisioner struct {
	ec2     EC2API
	vpcID   string
	timeout time.Duration
	logger  zerolog.Logger
}

func NewProvisioner(ec2API EC2API, vpcID string, timeout time.Duration, logger zerolog.Logger) *Provisioner {
	return &Provisioner{
		ec2:     ec2API,
		vpcID:   vpcID,
		timeout: timeout,
		logger:  logger.With().Str("component", "network-provisioner").Logger(),
	}
}

// Allocate picks the VPC's first subnet, creating one if none exists, and
// creates a security group carrying the requested rules. Resources created
// before a failure are not rolled back.
func (p *Provisioner) Allocate(ctx context.Context, slug string, networks model.Networks) (*model.NetworkConfig, error) {
	subnetID, err := p.subnet(ctx)
	if err != nil {
		return nil, err
	}

	groupID, err := p.securityGroup(ctx, slug)
	if err != nil {
		return nil, err
	}

	if len(networks.Inbound) > 0 {
		callCtx, cancel := p.call(ctx)
		_, err := p.ec2.AuthorizeSecurityGroupIngress(callCtx, &ec2.AuthorizeSecurityGroupIngressInput{
			GroupId:       aws.String(groupID),
			IpPermissions: permissions(networks.Inbound),
		})
		cancel()
		if err != nil {
			return nil, fmt.Errorf("authorize ingress on %s: %w", groupID, err)
		}
	}
	if len(networks.Outbound) > 0 {
		callCtx, cancel := p.call(ctx)
		_, err := p.ec2.AuthorizeSecurityGroupEgress(callCtx, &ec2.AuthorizeSecurityGroupEgressInput{
			GroupId:       aws.String(groupID),
			IpPermissions: permissions(networks.Outbound),
		})
		cancel()
		if err != nil {
			return nil, fmt.Errorf("authorize egress on %s: %w", groupID, err)
		}
	}

	p.logger.Info().Str("slug", slug).Str("subnet", subnetID).Str("security_group", groupID).Msg("network allocated")
	return &model.NetworkConfig{
		Subnets:        []string{subnetID},
		SecurityGroups: []string{groupID},
		AssignPublicIP: true,
	}, nil
}

func (p *Provisioner) call(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.timeout)
}

func (p *Provisioner) subnet(ctx context.Context) (string, error) {
	callCtx, cancel := p.call(ctx)
	out, err := p.ec2.DescribeSubnets(callCtx, &ec2.DescribeSubnetsInput{
		Filters: []ec2types.Filter{{Name: aws.String("vpc-id"), Values: []string{p.vpcID}}},
	})
	cancel()
	if err != nil {
		return "", fmt.Errorf("describe subnets of %s: %w", p.vpcID, err)
	}
	if len(out.Subnets) > 0 {
		return aws.ToString(out.Subnets[0].SubnetId), nil
	}

	callCtx, cancel = p.call(ctx)
	defer cancel()
	created, err := p.ec2.CreateSubnet(callCtx, &ec2.CreateSubnetInput{
		VpcId:     aws.String(p.vpcID),
		CidrBlock: aws.String(FallbackSubnetCIDR),
	})
	if err != nil {
		return "", fmt.Errorf("create subnet in %s: %w", p.vpcID, err)
	}
	id := aws.ToString(created.Subnet.SubnetId)
	p.logger.Info().Str("vpc", p.vpcID).Str("subnet", id).Msg("subnet created")
	return id, nil
}

func (p *Provisioner) securityGroup(ctx context.Context, slug string) (string, error) {
	name := platform.NewSecurityGroupName()
	callCtx, cancel := p.call(ctx)
	defer cancel()
	out, err := p.ec2.CreateSecurityGroup(callCtx, &ec2.CreateSecurityGroupInput{
		GroupName:   aws.String(name),
		Description: aws.String(slug),
		VpcId:       aws.String(p.vpcID),
	})
	if err != nil {
		return "", fmt.Errorf("create security group %s: %w", name, err)
	}
	return aws.ToString(out.GroupId), nil
}

// permissions converts rules to EC2 permissions. A rule without CIDRs
// applies to any IPv4 address.
func permissions(rules []model.Rule) []ec2types.IpPermission {
	perms := make([]ec2types.IpPermission, 0, len(rules))
	for _, r := range rules {
		cidrs := r.CIDRs
		if len(cidrs) == 0 {
			cidrs = []string{anyIPv4}
		}
		perm := ec2types.IpPermission{
			IpProtocol: aws.String(r.Protocol),
			FromPort:   aws.Int32(r.FromPort),
			ToPort:     aws.Int32(r.ToPort),
		}
		for _, c := range cidrs {
			ipRange := ec2types.IpRange{CidrIp: aws.String(c)}
			if r.Description != "" {
				ipRange.Description = aws.String(r.Description)
			}
			perm.IpRanges = append(perm.IpRanges, ipRange)
		}
		perms = append(perms, perm)
	}
	return perms
}
