// Package ecs runs machine tasks on Amazon ECS and reads back their state.
package ecs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsecs "github.com/aws/aws-sdk-go-v2/service/ecs"
	ecstypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"

	"github.com/edvin/machines/internal/model"
)

// DefaultTimeout bounds a single orchestrator call.
const DefaultTimeout = 30 * time.Second

// ECSAPI is the subset of the ECS client the orchestrator uses.
type ECSAPI interface {
	RegisterTaskDefinition(ctx context.Context, in *awsecs.RegisterTaskDefinitionInput, optFns ...func(*awsecs.Options)) (*awsecs.RegisterTaskDefinitionOutput, error)
	DeregisterTaskDefinition(ctx context.Context, in *awsecs.DeregisterTaskDefinitionInput, optFns ...func(*awsecs.Options)) (*awsecs.DeregisterTaskDefinitionOutput, error)
	ListTaskDefinitions(ctx context.Context, in *awsecs.ListTaskDefinitionsInput, optFns ...func(*awsecs.Options)) (*awsecs.ListTaskDefinitionsOutput, error)
	RunTask(ctx context.Context, in *awsecs.RunTaskInput, optFns ...func(*awsecs.Options)) (*awsecs.RunTaskOutput, error)
	DescribeTasks(ctx context.Context, in *awsecs.DescribeTasksInput, optFns ...func(*awsecs.Options)) (*awsecs.DescribeTasksOutput, error)
	StopTask(ctx context.Context, in *awsecs.StopTaskInput, optFns ...func(*awsecs.Options)) (*awsecs.StopTaskOutput, error)
	ListTasks(ctx context.Context, in *awsecs.ListTasksInput, optFns ...func(*awsecs.Options)) (*awsecs.ListTasksOutput, error)
	DescribeContainerInstances(ctx context.Context, in *awsecs.DescribeContainerInstancesInput, optFns ...func(*awsecs.Options)) (*awsecs.DescribeContainerInstancesOutput, error)
}

// EC2API is the subset of the EC2 client the orchestrator uses.
type EC2API interface {
	DescribeNetworkInterfaces(ctx context.Context, in *ec2.DescribeNetworkInterfacesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeNetworkInterfacesOutput, error)
	DeleteSecurityGroup(ctx context.Context, in *ec2.DeleteSecurityGroupInput, optFns ...func(*ec2.Options)) (*ec2.DeleteSecurityGroupOutput, error)
}

// SSMAPI is the subset of the SSM client used to locate external hosts.
type SSMAPI interface {
	DescribeInstanceInformation(ctx context.Context, in *ssm.DescribeInstanceInformationInput, optFns ...func(*ssm.Options)) (*ssm.DescribeInstanceInformationOutput, error)
}

// Client is the ECS-backed orchestrator.
type Client struct {
	ecs     ECSAPI
	ec2     EC2API
	ssm     SSMAPI
	cluster string
	timeout time.Duration
	logger  zerolog.Logger
}

func NewClient(ecsAPI ECSAPI, ec2API EC2API, ssmAPI SSMAPI, cluster string, timeout time.Duration, logger zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		ecs:     ecsAPI,
		ec2:     ec2API,
		ssm:     ssmAPI,
		cluster: cluster,
		timeout: timeout,
		logger:  logger.With().Str("component", "ecs-orchestrator").Logger(),
	}
}

// NewClientFromConfig builds the SDK clients from one AWS configuration.
func NewClientFromConfig(cfg aws.Config, cluster string, timeout time.Duration, logger zerolog.Logger) *Client {
	return NewClient(awsecs.NewFromConfig(cfg), ec2.NewFromConfig(cfg), ssm.NewFromConfig(cfg), cluster, timeout, logger)
}

func (c *Client) call(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

// RegisterTaskDefinition registers taskDefinition as a new revision of the
// family named slug.
func (c *Client) RegisterTaskDefinition(ctx context.Context, slug string, taskDefinition json.RawMessage) error {
	var in awsecs.RegisterTaskDefinitionInput
	if err := json.Unmarshal(taskDefinition, &in); err != nil {
		return fmt.Errorf("decode task definition: %w", err)
	}
	in.Family = aws.String(slug)

	ctx, cancel := c.call(ctx)
	defer cancel()
	out, err := c.ecs.RegisterTaskDefinition(ctx, &in)
	if err != nil {
		return fmt.Errorf("register task definition %s: %w", slug, err)
	}
	if out.TaskDefinition != nil {
		c.logger.Info().Str("family", slug).Int32("revision", out.TaskDefinition.Revision).Msg("task definition registered")
	}
	return nil
}

// DeregisterAllRevisions deregisters every revision of the family.
func (c *Client) DeregisterAllRevisions(ctx context.Context, slug string) error {
	p := awsecs.NewListTaskDefinitionsPaginator(c.ecs, &awsecs.ListTaskDefinitionsInput{
		FamilyPrefix: aws.String(slug),
	})
	for p.HasMorePages() {
		pageCtx, cancel := c.call(ctx)
		page, err := p.NextPage(pageCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("list task definitions %s: %w", slug, err)
		}
		for _, arn := range page.TaskDefinitionArns {
			if familyOf(arn) != slug {
				continue
			}
			if err := c.deregister(ctx, arn); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Client) deregister(ctx context.Context, arn string) error {
	ctx, cancel := c.call(ctx)
	defer cancel()
	if _, err := c.ecs.DeregisterTaskDefinition(ctx, &awsecs.DeregisterTaskDefinitionInput{
		TaskDefinition: aws.String(arn),
	}); err != nil {
		return fmt.Errorf("deregister task definition %s: %w", arn, err)
	}
	c.logger.Info().Str("task_definition", arn).Msg("task definition deregistered")
	return nil
}

// RunTask starts one task of the family. network must be set for Fargate.
func (c *Client) RunTask(ctx context.Context, slug string, cfg *model.MachineConfig, network *model.NetworkConfig) (model.Detail, error) {
	in := &awsecs.RunTaskInput{
		Cluster:        aws.String(c.cluster),
		Count:          aws.Int32(1),
		LaunchType:     ecstypes.LaunchType(cfg.LaunchType),
		TaskDefinition: aws.String(slug),
	}
	if network != nil {
		assign := ecstypes.AssignPublicIpDisabled
		if network.AssignPublicIP {
			assign = ecstypes.AssignPublicIpEnabled
		}
		in.NetworkConfiguration = &ecstypes.NetworkConfiguration{
			AwsvpcConfiguration: &ecstypes.AwsVpcConfiguration{
				Subnets:        network.Subnets,
				SecurityGroups: network.SecurityGroups,
				AssignPublicIp: assign,
			},
		}
	}

	runCtx, cancel := c.call(ctx)
	out, err := c.ecs.RunTask(runCtx, in)
	cancel()
	if err != nil {
		return model.Detail{}, fmt.Errorf("run task %s: %w", slug, err)
	}
	if len(out.Tasks) == 0 {
		return model.Detail{}, fmt.Errorf("run task %s: %w", slug, failureError(out.Failures))
	}

	task := out.Tasks[0]
	detail := baseDetail(task)
	if detail.LaunchType == model.LaunchTypeFargate {
		detail.Containers, err = fargateContainers(cfg.TaskDefinition)
		if err != nil {
			return model.Detail{}, err
		}
		if network != nil {
			detail.Fargate = &model.FargateNetwork{SecurityGroupIDs: network.SecurityGroups}
			if len(network.Subnets) > 0 {
				detail.Fargate.SubnetID = network.Subnets[0]
			}
		}
	}
	if err := c.resolveRunning(ctx, task, &detail); err != nil {
		return model.Detail{}, err
	}

	c.logger.Info().Str("family", slug).Str("task", detail.TaskArn).Str("launch_type", detail.LaunchType).Msg("task started")
	return detail, nil
}

// DescribeTask returns the current state of a task. Fields that are only
// known while the task runs are left empty otherwise.
func (c *Client) DescribeTask(ctx context.Context, taskArn string) (model.Detail, error) {
	descCtx, cancel := c.call(ctx)
	out, err := c.ecs.DescribeTasks(descCtx, &awsecs.DescribeTasksInput{
		Cluster: aws.String(c.cluster),
		Tasks:   []string{taskArn},
	})
	cancel()
	if err != nil {
		return model.Detail{}, fmt.Errorf("describe task %s: %w", taskArn, err)
	}
	if len(out.Tasks) == 0 {
		return model.Detail{}, fmt.Errorf("describe task %s: %w", taskArn, failureError(out.Failures))
	}

	task := out.Tasks[0]
	detail := baseDetail(task)
	if err := c.resolveRunning(ctx, task, &detail); err != nil {
		return model.Detail{}, err
	}
	return detail, nil
}

// resolveRunning fills in the network location of a running task.
func (c *Client) resolveRunning(ctx context.Context, task ecstypes.Task, detail *model.Detail) error {
	if aws.ToString(task.LastStatus) != model.TaskStatusRunning {
		return nil
	}
	switch detail.LaunchType {
	case model.LaunchTypeFargate:
		return c.resolveFargate(ctx, task, detail)
	case model.LaunchTypeExternal:
		detail.Containers = externalContainers(task.Containers)
		return c.resolveExternal(ctx, task, detail)
	}
	return nil
}

func (c *Client) resolveFargate(ctx context.Context, task ecstypes.Task, detail *model.Detail) error {
	eniID := networkInterfaceID(task.Attachments)
	if eniID == "" {
		return nil
	}
	ctx, cancel := c.call(ctx)
	defer cancel()
	out, err := c.ec2.DescribeNetworkInterfaces(ctx, &ec2.DescribeNetworkInterfacesInput{
		NetworkInterfaceIds: []string{eniID},
	})
	if err != nil {
		return fmt.Errorf("describe network interface %s: %w", eniID, err)
	}
	if len(out.NetworkInterfaces) == 0 {
		return fmt.Errorf("describe network interface %s: not found", eniID)
	}

	eni := out.NetworkInterfaces[0]
	fargate := &model.FargateNetwork{
		NetworkInterfaceID: eniID,
		SubnetID:           aws.ToString(eni.SubnetId),
	}
	for _, g := range eni.Groups {
		fargate.SecurityGroupIDs = append(fargate.SecurityGroupIDs, aws.ToString(g.GroupId))
	}
	if eni.Association != nil {
		detail.PublicIP = aws.ToString(eni.Association.PublicIp)
	}
	detail.Fargate = fargate
	return nil
}

func (c *Client) resolveExternal(ctx context.Context, task ecstypes.Task, detail *model.Detail) error {
	instanceArn := aws.ToString(task.ContainerInstanceArn)
	if instanceArn == "" {
		return nil
	}
	host := &model.ExternalHost{ContainerInstanceArn: instanceArn}
	detail.External = host

	ciCtx, cancel := c.call(ctx)
	out, err := c.ecs.DescribeContainerInstances(ciCtx, &awsecs.DescribeContainerInstancesInput{
		Cluster:            aws.String(c.cluster),
		ContainerInstances: []string{instanceArn},
	})
	cancel()
	if err != nil {
		return fmt.Errorf("describe container instance %s: %w", instanceArn, err)
	}
	if len(out.ContainerInstances) == 0 {
		return fmt.Errorf("describe container instance %s: not found", instanceArn)
	}
	host.EC2InstanceID = aws.ToString(out.ContainerInstances[0].Ec2InstanceId)

	ssmCtx, cancel := c.call(ctx)
	defer cancel()
	info, err := c.ssm.DescribeInstanceInformation(ssmCtx, &ssm.DescribeInstanceInformationInput{
		InstanceInformationFilterList: []ssmtypes.InstanceInformationFilter{{
			Key:      ssmtypes.InstanceInformationFilterKeyInstanceIds,
			ValueSet: []string{host.EC2InstanceID},
		}},
	})
	if err != nil {
		return fmt.Errorf("describe instance information %s: %w", host.EC2InstanceID, err)
	}
	if len(info.InstanceInformationList) == 0 {
		return fmt.Errorf("describe instance information %s: not found", host.EC2InstanceID)
	}
	detail.PublicIP = aws.ToString(info.InstanceInformationList[0].IPAddress)
	return nil
}

// StopTask asks the cluster to stop a task.
func (c *Client) StopTask(ctx context.Context, taskArn string) error {
	ctx, cancel := c.call(ctx)
	defer cancel()
	if _, err := c.ecs.StopTask(ctx, &awsecs.StopTaskInput{
		Cluster: aws.String(c.cluster),
		Task:    aws.String(taskArn),
	}); err != nil {
		return fmt.Errorf("stop task %s: %w", taskArn, err)
	}
	return nil
}

// ListTasksByFamily returns the ARNs of every task of the family.
func (c *Client) ListTasksByFamily(ctx context.Context, slug string) ([]string, error) {
	p := awsecs.NewListTasksPaginator(c.ecs, &awsecs.ListTasksInput{
		Cluster: aws.String(c.cluster),
		Family:  aws.String(slug),
	})
	var arns []string
	for p.HasMorePages() {
		pageCtx, cancel := c.call(ctx)
		page, err := p.NextPage(pageCtx)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("list tasks %s: %w", slug, err)
		}
		arns = append(arns, page.TaskArns...)
	}
	return arns, nil
}

// StopAllByFamily stops every task of the family. It keeps going past
// failures and returns them joined.
func (c *Client) StopAllByFamily(ctx context.Context, slug string) error {
	arns, err := c.ListTasksByFamily(ctx, slug)
	if err != nil {
		return err
	}
	var errs []error
	for _, arn := range arns {
		if err := c.StopTask(ctx, arn); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DeleteSecurityGroups deletes the groups. Groups that no longer exist
// count as deleted.
func (c *Client) DeleteSecurityGroups(ctx context.Context, ids []string) error {
	for _, id := range ids {
		delCtx, cancel := c.call(ctx)
		_, err := c.ec2.DeleteSecurityGroup(delCtx, &ec2.DeleteSecurityGroupInput{GroupId: aws.String(id)})
		cancel()
		if err != nil && !isErrorCode(err, "InvalidGroup.NotFound") {
			return fmt.Errorf("delete security group %s: %w", id, err)
		}
		c.logger.Debug().Str("security_group", id).Msg("security group deleted")
	}
	return nil
}

func isErrorCode(err error, code string) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == code
}

func failureError(failures []ecstypes.Failure) error {
	if len(failures) == 0 {
		return errors.New("no task returned")
	}
	var reasons []string
	for _, f := range failures {
		reasons = append(reasons, aws.ToString(f.Reason))
	}
	return errors.New(strings.Join(reasons, "; "))
}

// familyOf extracts the family from a task definition ARN such as
// arn:aws:ecs:eu-west-1:123:task-definition/ctfd-abc:3.
func familyOf(arn string) string {
	name := arn[strings.LastIndex(arn, "/")+1:]
	if i := strings.LastIndex(name, ":"); i >= 0 {
		name = name[:i]
	}
	return name
}
