package ecs

import (
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	ecstypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"

	"github.com/edvin/machines/internal/model"
)

func baseDetail(task ecstypes.Task) model.Detail {
	return model.Detail{
		LaunchType:        string(task.LaunchType),
		TaskArn:           aws.ToString(task.TaskArn),
		TaskDefinitionArn: aws.ToString(task.TaskDefinitionArn),
		LastStatus:        aws.ToString(task.LastStatus),
		DesiredStatus:     aws.ToString(task.DesiredStatus),
	}
}

type taskDefinitionPorts struct {
	ContainerDefinitions []struct {
		Name         string `json:"name"`
		PortMappings []struct {
			ContainerPort int32  `json:"containerPort"`
			Protocol      string `json:"protocol"`
		} `json:"portMappings"`
	} `json:"containerDefinitions"`
}

// fargateContainers lists the exposed ports of a Fargate task definition.
// In awsvpc mode the host port always equals the container port.
func fargateContainers(taskDefinition json.RawMessage) ([]model.Container, error) {
	var td taskDefinitionPorts
	if err := json.Unmarshal(taskDefinition, &td); err != nil {
		return nil, fmt.Errorf("decode task definition ports: %w", err)
	}
	var containers []model.Container
	for _, cd := range td.ContainerDefinitions {
		c := model.Container{Name: cd.Name}
		for _, pm := range cd.PortMappings {
			c.PortMappings = append(c.PortMappings, model.PortMapping{
				ContainerPort: pm.ContainerPort,
				HostPort:      pm.ContainerPort,
				Protocol:      pm.Protocol,
			})
		}
		if len(c.PortMappings) > 0 {
			containers = append(containers, c)
		}
	}
	return containers, nil
}

// externalContainers lists the host bindings of a task on a self-managed
// instance. Bindings repeated per address family share a host port and
// are reported once.
func externalContainers(containers []ecstypes.Container) []model.Container {
	var out []model.Container
	for _, ct := range containers {
		c := model.Container{Name: aws.ToString(ct.Name)}
		seen := map[int32]bool{}
		for _, nb := range ct.NetworkBindings {
			host := aws.ToInt32(nb.HostPort)
			if seen[host] {
				continue
			}
			seen[host] = true
			c.PortMappings = append(c.PortMappings, model.PortMapping{
				ContainerPort: aws.ToInt32(nb.ContainerPort),
				HostPort:      host,
				Protocol:      string(nb.Protocol),
			})
		}
		if len(c.PortMappings) > 0 {
			out = append(out, c)
		}
	}
	return out
}

func networkInterfaceID(attachments []ecstypes.Attachment) string {
	for _, a := range attachments {
		for _, kv := range a.Details {
			if aws.ToString(kv.Name) == "networkInterfaceId" {
				return aws.ToString(kv.Value)
			}
		}
	}
	return ""
}
