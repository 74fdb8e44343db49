package ecs

import (
	"context"

	awsecs "github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/stretchr/testify/mock"
)

type mockECS struct {
	mock.Mock
}

func (m *mockECS) RegisterTaskDefinition(ctx context.Context, in *awsecs.RegisterTaskDefinitionInput, _ ...func(*awsecs.Options)) (*awsecs.RegisterTaskDefinitionOutput, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(*awsecs.RegisterTaskDefinitionOutput), args.Error(1)
}

func (m *mockECS) DeregisterTaskDefinition(ctx context.Context, in *awsecs.DeregisterTaskDefinitionInput, _ ...func(*awsecs.Options)) (*awsecs.DeregisterTaskDefinitionOutput, error) {
	args := m.Called(ctx, in)
	return &awsecs.DeregisterTaskDefinitionOutput{}, args.Error(0)
}

func (m *mockECS) ListTaskDefinitions(ctx context.Context, in *awsecs.ListTaskDefinitionsInput, _ ...func(*awsecs.Options)) (*awsecs.ListTaskDefinitionsOutput, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(*awsecs.ListTaskDefinitionsOutput), args.Error(1)
}

func (m *mockECS) RunTask(ctx context.Context, in *awsecs.RunTaskInput, _ ...func(*awsecs.Options)) (*awsecs.RunTaskOutput, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(*awsecs.RunTaskOutput), args.Error(1)
}

func (m *mockECS) DescribeTasks(ctx context.Context, in *awsecs.DescribeTasksInput, _ ...func(*awsecs.Options)) (*awsecs.DescribeTasksOutput, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(*awsecs.DescribeTasksOutput), args.Error(1)
}

func (m *mockECS) StopTask(ctx context.Context, in *awsecs.StopTaskInput, _ ...func(*awsecs.Options)) (*awsecs.StopTaskOutput, error) {
	args := m.Called(ctx, in)
	return &awsecs.StopTaskOutput{}, args.Error(0)
}

func (m *mockECS) ListTasks(ctx context.Context, in *awsecs.ListTasksInput, _ ...func(*awsecs.Options)) (*awsecs.ListTasksOutput, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(*awsecs.ListTasksOutput), args.Error(1)
}

func (m *mockECS) DescribeContainerInstances(ctx context.Context, in *awsecs.DescribeContainerInstancesInput, _ ...func(*awsecs.Options)) (*awsecs.DescribeContainerInstancesOutput, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(*awsecs.DescribeContainerInstancesOutput), args.Error(1)
}

type mockEC2 struct {
	mock.Mock
}

func (m *mockEC2) DescribeNetworkInterfaces(ctx context.Context, in *ec2.DescribeNetworkInterfacesInput, _ ...func(*ec2.Options)) (*ec2.DescribeNetworkInterfacesOutput, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(*ec2.DescribeNetworkInterfacesOutput), args.Error(1)
}

func (m *mockEC2) DeleteSecurityGroup(ctx context.Context, in *ec2.DeleteSecurityGroupInput, _ ...func(*ec2.Options)) (*ec2.DeleteSecurityGroupOutput, error) {
	args := m.Called(ctx, in)
	return &ec2.DeleteSecurityGroupOutput{}, args.Error(0)
}

type mockSSM struct {
	mock.Mock
}

func (m *mockSSM) DescribeInstanceInformation(ctx context.Context, in *ssm.DescribeInstanceInformationInput, _ ...func(*ssm.Options)) (*ssm.DescribeInstanceInformationOutput, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(*ssm.DescribeInstanceInformationOutput), args.Error(1)
}
