package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetail_Merge_KeepsOmittedFields(t *testing.T) {
	prior := Detail{
		LaunchType:        LaunchTypeFargate,
		TaskArn:           "arn:task/1",
		TaskDefinitionArn: "arn:taskdef/ctfd-abc:1",
		LastStatus:        "PROVISIONING",
		DesiredStatus:     "RUNNING",
		Containers: []Container{
			{Name: "web", PortMappings: []PortMapping{{ContainerPort: 80, HostPort: 80, Protocol: "tcp"}}},
		},
		Fargate: &FargateNetwork{SecurityGroupIDs: []string{"sg-1"}},
	}
	observed := Detail{
		LastStatus: TaskStatusRunning,
		PublicIP:   "203.0.113.10",
		Fargate:    &FargateNetwork{NetworkInterfaceID: "eni-1", SubnetID: "subnet-1"},
	}

	merged := prior.Merge(observed)

	assert.Equal(t, LaunchTypeFargate, merged.LaunchType)
	assert.Equal(t, "arn:task/1", merged.TaskArn)
	assert.Equal(t, "arn:taskdef/ctfd-abc:1", merged.TaskDefinitionArn)
	assert.Equal(t, TaskStatusRunning, merged.LastStatus)
	assert.Equal(t, "RUNNING", merged.DesiredStatus)
	assert.Equal(t, "203.0.113.10", merged.PublicIP)
	require.Len(t, merged.Containers, 1)
	assert.Equal(t, "web", merged.Containers[0].Name)
	require.NotNil(t, merged.Fargate)
	assert.Equal(t, "eni-1", merged.Fargate.NetworkInterfaceID)
	assert.Equal(t, "subnet-1", merged.Fargate.SubnetID)
	assert.Equal(t, []string{"sg-1"}, merged.Fargate.SecurityGroupIDs)
}

func TestDetail_Merge_DoesNotMutateReceiver(t *testing.T) {
	prior := Detail{Fargate: &FargateNetwork{SubnetID: "subnet-old"}}
	_ = prior.Merge(Detail{Fargate: &FargateNetwork{SubnetID: "subnet-new"}})
	assert.Equal(t, "subnet-old", prior.Fargate.SubnetID)
}

func TestDetail_Merge_EmptyObservationIsIdentity(t *testing.T) {
	prior := Detail{
		LaunchType: LaunchTypeExternal,
		TaskArn:    "arn:task/2",
		PublicIP:   "198.51.100.7",
		External:   &ExternalHost{ContainerInstanceArn: "arn:ci/1", EC2InstanceID: "i-1"},
	}
	assert.Equal(t, prior, prior.Merge(Detail{}))
}

func TestDetail_Merge_ReplacesContainersWhenObserved(t *testing.T) {
	prior := Detail{Containers: []Container{{Name: "old"}}}
	merged := prior.Merge(Detail{Containers: []Container{{Name: "a"}, {Name: "b"}}})
	require.Len(t, merged.Containers, 2)
	assert.Equal(t, "a", merged.Containers[0].Name)
}

func TestDetail_SecurityGroupIDs(t *testing.T) {
	fargate := Detail{LaunchType: LaunchTypeFargate, Fargate: &FargateNetwork{SecurityGroupIDs: []string{"sg-1", "sg-2"}}}
	assert.Equal(t, []string{"sg-1", "sg-2"}, fargate.SecurityGroupIDs())

	external := Detail{LaunchType: LaunchTypeExternal, Fargate: &FargateNetwork{SecurityGroupIDs: []string{"sg-1"}}}
	assert.Nil(t, external.SecurityGroupIDs())

	assert.Nil(t, Detail{LaunchType: LaunchTypeFargate}.SecurityGroupIDs())
}

func TestDetail_JSONShape(t *testing.T) {
	d := Detail{
		LaunchType: LaunchTypeFargate,
		TaskArn:    "arn:task/1",
		Fargate:    &FargateNetwork{NetworkInterfaceID: "eni-1"},
	}
	b, err := json.Marshal(d)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, "FARGATE", raw["launchType"])
	assert.Equal(t, "arn:task/1", raw["taskArn"])
	assert.Contains(t, raw, "fargate")
	assert.NotContains(t, raw, "external")
}
