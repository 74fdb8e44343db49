package model

// Detail is the last known orchestrator view of a machine. The launch
// shape decides which of Fargate or External is populated.
type Detail struct {
	LaunchType        string      `json:"launchType"`
	TaskArn           string      `json:"taskArn"`
	TaskDefinitionArn string      `json:"taskDefinitionArn"`
	LastStatus        string      `json:"lastStatus"`
	DesiredStatus     string      `json:"desiredStatus"`
	Containers        []Container `json:"containers"`
	PublicIP          string      `json:"publicIp"`

	Fargate  *FargateNetwork `json:"fargate,omitempty"`
	External *ExternalHost   `json:"external,omitempty"`
}

// Container lists the reachable ports of one task container.
type Container struct {
	Name         string        `json:"name"`
	PortMappings []PortMapping `json:"portMappings"`
}

// PortMapping maps a container port to the port exposed on the host.
type PortMapping struct {
	ContainerPort int32  `json:"containerPort"`
	HostPort      int32  `json:"hostPort"`
	Protocol      string `json:"protocol,omitempty"`
}

// FargateNetwork is the platform-managed network attachment of a task.
type FargateNetwork struct {
	NetworkInterfaceID string   `json:"networkInterfaceId"`
	SubnetID           string   `json:"subnetId"`
	SecurityGroupIDs   []string `json:"securityGroupIds"`
}

// ExternalHost identifies the self-managed instance a task landed on.
type ExternalHost struct {
	ContainerInstanceArn string `json:"containerInstanceArn"`
	EC2InstanceID        string `json:"ec2InstanceId"`
}

// Running reports whether the orchestrator last saw the task running.
func (d Detail) Running() bool {
	return d.LastStatus == TaskStatusRunning
}

// SecurityGroupIDs returns the security groups that must be deleted once
// the task is gone. Only Fargate tasks own security groups.
func (d Detail) SecurityGroupIDs() []string {
	if d.LaunchType != LaunchTypeFargate || d.Fargate == nil {
		return nil
	}
	return d.Fargate.SecurityGroupIDs
}

// Merge overlays the non-empty fields of observed onto d. Fields observed
// leaves empty keep their previous value.
func (d Detail) Merge(observed Detail) Detail {
	out := d
	out.LaunchType = pick(d.LaunchType, observed.LaunchType)
	out.TaskArn = pick(d.TaskArn, observed.TaskArn)
	out.TaskDefinitionArn = pick(d.TaskDefinitionArn, observed.TaskDefinitionArn)
	out.LastStatus = pick(d.LastStatus, observed.LastStatus)
	out.DesiredStatus = pick(d.DesiredStatus, observed.DesiredStatus)
	out.PublicIP = pick(d.PublicIP, observed.PublicIP)
	if len(observed.Containers) > 0 {
		out.Containers = observed.Containers
	}

	switch {
	case observed.Fargate == nil:
	case d.Fargate == nil:
		f := *observed.Fargate
		out.Fargate = &f
	default:
		f := *d.Fargate
		f.NetworkInterfaceID = pick(f.NetworkInterfaceID, observed.Fargate.NetworkInterfaceID)
		f.SubnetID = pick(f.SubnetID, observed.Fargate.SubnetID)
		if len(observed.Fargate.SecurityGroupIDs) > 0 {
			f.SecurityGroupIDs = observed.Fargate.SecurityGroupIDs
		}
		out.Fargate = &f
	}

	switch {
	case observed.External == nil:
	case d.External == nil:
		e := *observed.External
		out.External = &e
	default:
		e := *d.External
		e.ContainerInstanceArn = pick(e.ContainerInstanceArn, observed.External.ContainerInstanceArn)
		e.EC2InstanceID = pick(e.EC2InstanceID, observed.External.EC2InstanceID)
		out.External = &e
	}

	return out
}

func pick(old, observed string) string {
	if observed != "" {
		return observed
	}
	return old
}
