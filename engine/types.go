// Copyright 2026 The Dockhand Authors
// SPDX-License-Identifier: Apache-2.0

package engine

// Wire types for daemon responses. Field sets track the API reference
// (https://docs.docker.com/engine/api/); fields no supported endpoint
// returns are omitted rather than speculatively mapped.

// Version is the response to GET /version.
type Version struct {
	Version       string `json:"Version"`
	APIVersion    string `json:"ApiVersion"`
	MinAPIVersion string `json:"MinAPIVersion,omitempty"`
	GitCommit     string `json:"GitCommit"`
	GoVersion     string `json:"GoVersion"`
	Os            string `json:"Os"`
	Arch          string `json:"Arch"`
	KernelVersion string `json:"KernelVersion,omitempty"`
	BuildTime     string `json:"BuildTime,omitempty"`
}

// Info is the response to GET /info.
type Info struct {
	ID                string      `json:"ID"`
	Name              string      `json:"Name"`
	Containers        int         `json:"Containers"`
	ContainersRunning int         `json:"ContainersRunning"`
	ContainersPaused  int         `json:"ContainersPaused"`
	ContainersStopped int         `json:"ContainersStopped"`
	Images            int         `json:"Images"`
	Driver            string      `json:"Driver"`
	DriverStatus      [][2]string `json:"DriverStatus"`
	DockerRootDir     string      `json:"DockerRootDir"`
	KernelVersion     string      `json:"KernelVersion"`
	OperatingSystem   string      `json:"OperatingSystem"`
	OSType            string      `json:"OSType"`
	Architecture      string      `json:"Architecture"`
	NCPU              int         `json:"NCPU"`
	MemTotal          int64       `json:"MemTotal"`
	MemoryLimit       bool        `json:"MemoryLimit"`
	SwapLimit         bool        `json:"SwapLimit"`
	ServerVersion     string      `json:"ServerVersion"`
	Labels            []string    `json:"Labels"`
	SystemTime        string      `json:"SystemTime"`
}

// Event is one entry in the daemon event feed.
type Event struct {
	Type     string `json:"Type"`
	Action   string `json:"Action"`
	Actor    Actor  `json:"Actor"`
	Scope    string `json:"scope,omitempty"`
	Status   string `json:"status,omitempty"`
	ID       string `json:"id,omitempty"`
	From     string `json:"from,omitempty"`
	Time     int64  `json:"time"`
	TimeNano int64  `json:"timeNano"`
}

// Actor identifies the object an event relates to.
type Actor struct {
	ID         string            `json:"ID"`
	Attributes map[string]string `json:"Attributes"`
}

// ContainerSummary is one entry in a container listing.
type ContainerSummary struct {
	ID         string            `json:"Id"`
	Names      []string          `json:"Names"`
	Image      string            `json:"Image"`
	ImageID    string            `json:"ImageID"`
	Command    string            `json:"Command"`
	Created    int64             `json:"Created"`
	State      string            `json:"State"`
	Status     string            `json:"Status"`
	Ports      []Port            `json:"Ports"`
	Labels     map[string]string `json:"Labels"`
	SizeRw     int64             `json:"SizeRw,omitempty"`
	SizeRootFs int64             `json:"SizeRootFs,omitempty"`
}

// Port is one published port mapping in a container listing.
type Port struct {
	IP          string `json:"IP,omitempty"`
	PrivatePort int    `json:"PrivatePort"`
	PublicPort  int    `json:"PublicPort,omitempty"`
	Type        string `json:"Type"`
}

// ContainerDetails is the response to GET /containers/{id}/json.
type ContainerDetails struct {
	ID              string          `json:"Id"`
	Created         string          `json:"Created"`
	Path            string          `json:"Path"`
	Args            []string        `json:"Args"`
	State           ContainerState  `json:"State"`
	Image           string          `json:"Image"`
	Name            string          `json:"Name"`
	RestartCount    int             `json:"RestartCount"`
	Driver          string          `json:"Driver"`
	Platform        string          `json:"Platform,omitempty"`
	MountLabel      string          `json:"MountLabel"`
	ProcessLabel    string          `json:"ProcessLabel"`
	AppArmorProfile string          `json:"AppArmorProfile"`
	Config          ContainerConfig `json:"Config"`
	HostConfig      HostConfig      `json:"HostConfig"`
	NetworkSettings NetworkSettings `json:"NetworkSettings"`
	Mounts          []MountPoint    `json:"Mounts"`
}

// ContainerState is the State block of a container inspection.
type ContainerState struct {
	Status     string `json:"Status"`
	Running    bool   `json:"Running"`
	Paused     bool   `json:"Paused"`
	Restarting bool   `json:"Restarting"`
	OOMKilled  bool   `json:"OOMKilled"`
	Dead       bool   `json:"Dead"`
	Pid        int    `json:"Pid"`
	ExitCode   int    `json:"ExitCode"`
	Error      string `json:"Error"`
	StartedAt  string `json:"StartedAt"`
	FinishedAt string `json:"FinishedAt"`
}

// NetworkSettings is the network block of a container inspection.
type NetworkSettings struct {
	IPAddress  string                      `json:"IPAddress"`
	Gateway    string                      `json:"Gateway"`
	MacAddress string                      `json:"MacAddress"`
	Ports      map[string][]PortBinding    `json:"Ports"`
	Networks   map[string]EndpointSettings `json:"Networks"`
}

// EndpointSettings is one network attachment in a container
// inspection.
type EndpointSettings struct {
	NetworkID  string `json:"NetworkID"`
	EndpointID string `json:"EndpointID"`
	Gateway    string `json:"Gateway"`
	IPAddress  string `json:"IPAddress"`
	MacAddress string `json:"MacAddress"`
}

// MountPoint is one mount in a container inspection.
type MountPoint struct {
	Type        string `json:"Type"`
	Name        string `json:"Name,omitempty"`
	Source      string `json:"Source"`
	Destination string `json:"Destination"`
	Driver      string `json:"Driver,omitempty"`
	Mode        string `json:"Mode"`
	RW          bool   `json:"RW"`
}

// ContainerCreated is the response to POST /containers/create.
type ContainerCreated struct {
	ID       string   `json:"Id"`
	Warnings []string `json:"Warnings"`
}

// Change is one filesystem change reported by
// GET /containers/{id}/changes. Kind is 0 (modified), 1 (added) or
// 2 (deleted).
type Change struct {
	Path string `json:"Path"`
	Kind int    `json:"Kind"`
}

// Top is the response to GET /containers/{id}/top.
type Top struct {
	Titles    []string   `json:"Titles"`
	Processes [][]string `json:"Processes"`
}

// Exit is the response to POST /containers/{id}/wait.
type Exit struct {
	StatusCode int64 `json:"StatusCode"`
	Error      *struct {
		Message string `json:"Message"`
	} `json:"Error,omitempty"`
}

// Stats is one sample from the per-second stats stream.
type Stats struct {
	Read        string                  `json:"read"`
	PidsStats   PidsStats               `json:"pids_stats"`
	CPUStats    CPUStats                `json:"cpu_stats"`
	PreCPUStats CPUStats                `json:"precpu_stats"`
	MemoryStats MemoryStats             `json:"memory_stats"`
	Networks    map[string]NetworkStats `json:"networks"`
}

// PidsStats counts processes in the container.
type PidsStats struct {
	Current int64 `json:"current"`
	Limit   int64 `json:"limit,omitempty"`
}

// CPUStats is the CPU block of a stats sample.
type CPUStats struct {
	CPUUsage       CPUUsage `json:"cpu_usage"`
	SystemCPUUsage int64    `json:"system_cpu_usage"`
	OnlineCPUs     int      `json:"online_cpus,omitempty"`
}

// CPUUsage breaks down consumed CPU time.
type CPUUsage struct {
	TotalUsage        int64 `json:"total_usage"`
	UsageInKernelmode int64 `json:"usage_in_kernelmode"`
	UsageInUsermode   int64 `json:"usage_in_usermode"`
}

// MemoryStats is the memory block of a stats sample.
type MemoryStats struct {
	Usage    int64 `json:"usage"`
	MaxUsage int64 `json:"max_usage,omitempty"`
	Limit    int64 `json:"limit"`
}

// NetworkStats is one interface's counters in a stats sample.
type NetworkStats struct {
	RxBytes   int64 `json:"rx_bytes"`
	RxPackets int64 `json:"rx_packets"`
	RxErrors  int64 `json:"rx_errors"`
	RxDropped int64 `json:"rx_dropped"`
	TxBytes   int64 `json:"tx_bytes"`
	TxPackets int64 `json:"tx_packets"`
	TxErrors  int64 `json:"tx_errors"`
	TxDropped int64 `json:"tx_dropped"`
}

// ImageSummary is one entry in an image listing.
type ImageSummary struct {
	ID          string            `json:"Id"`
	ParentID    string            `json:"ParentId"`
	RepoTags    []string          `json:"RepoTags"`
	RepoDigests []string          `json:"RepoDigests"`
	Created     int64             `json:"Created"`
	Size        int64             `json:"Size"`
	SharedSize  int64             `json:"SharedSize"`
	Labels      map[string]string `json:"Labels"`
	Containers  int64             `json:"Containers"`
}

// ImageDetails is the response to GET /images/{name}/json.
type ImageDetails struct {
	ID            string   `json:"Id"`
	RepoTags      []string `json:"RepoTags"`
	RepoDigests   []string `json:"RepoDigests"`
	Parent        string   `json:"Parent"`
	Comment       string   `json:"Comment"`
	Created       string   `json:"Created"`
	DockerVersion string   `json:"DockerVersion"`
	Author        string   `json:"Author"`
	Architecture  string   `json:"Architecture"`
	Os            string   `json:"Os"`
	Size          int64    `json:"Size"`
	VirtualSize   int64    `json:"VirtualSize,omitempty"`
}

// ImageHistory is one layer in GET /images/{name}/history.
type ImageHistory struct {
	ID        string   `json:"Id"`
	Created   int64    `json:"Created"`
	CreatedBy string   `json:"CreatedBy"`
	Tags      []string `json:"Tags"`
	Size      int64    `json:"Size"`
	Comment   string   `json:"Comment"`
}

// ImageDeleted is one entry in the response to DELETE /images/{name}:
// exactly one of the fields is set per entry.
type ImageDeleted struct {
	Untagged string `json:"Untagged,omitempty"`
	Deleted  string `json:"Deleted,omitempty"`
}

// SearchResult is one registry hit from GET /images/search.
type SearchResult struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsOfficial  bool   `json:"is_official"`
	IsAutomated bool   `json:"is_automated"`
	StarCount   int    `json:"star_count"`
}

// ProgressMessage is one document in a pull/build/import progress
// stream. The daemon interleaves status lines, layer progress and
// (for build) raw output; an Error field marks a failed operation
// reported in-stream.
type ProgressMessage struct {
	Stream         string          `json:"stream,omitempty"`
	Status         string          `json:"status,omitempty"`
	Progress       string          `json:"progress,omitempty"`
	ProgressDetail *ProgressDetail `json:"progressDetail,omitempty"`
	ID             string          `json:"id,omitempty"`
	Error          string          `json:"error,omitempty"`
	ErrorDetail    *ErrorDetail    `json:"errorDetail,omitempty"`
	Aux            map[string]any  `json:"aux,omitempty"`
}

// ProgressDetail carries byte counts for a layer transfer.
type ProgressDetail struct {
	Current int64 `json:"current"`
	Total   int64 `json:"total"`
}

// ErrorDetail is the structured form of an in-stream error.
type ErrorDetail struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message"`
}

// NetworkResource is one network in a listing or inspection.
type NetworkResource struct {
	Name       string                      `json:"Name"`
	ID         string                      `json:"Id"`
	Created    string                      `json:"Created"`
	Scope      string                      `json:"Scope"`
	Driver     string                      `json:"Driver"`
	EnableIPv6 bool                        `json:"EnableIPv6"`
	Internal   bool                        `json:"Internal"`
	Attachable bool                        `json:"Attachable"`
	IPAM       IPAM                        `json:"IPAM"`
	Containers map[string]NetworkContainer `json:"Containers,omitempty"`
	Options    map[string]string           `json:"Options,omitempty"`
	Labels     map[string]string           `json:"Labels,omitempty"`
}

// IPAM is a network's address management block.
type IPAM struct {
	Driver  string            `json:"Driver"`
	Config  []IPAMConfig      `json:"Config,omitempty"`
	Options map[string]string `json:"Options,omitempty"`
}

// IPAMConfig is one subnet assignment.
type IPAMConfig struct {
	Subnet  string `json:"Subnet,omitempty"`
	IPRange string `json:"IPRange,omitempty"`
	Gateway string `json:"Gateway,omitempty"`
}

// NetworkContainer is one attached container in a network inspection.
type NetworkContainer struct {
	Name        string `json:"Name"`
	EndpointID  string `json:"EndpointID"`
	MacAddress  string `json:"MacAddress"`
	IPv4Address string `json:"IPv4Address"`
	IPv6Address string `json:"IPv6Address"`
}

// NetworkCreated is the response to POST /networks/create.
type NetworkCreated struct {
	ID      string `json:"Id"`
	Warning string `json:"Warning,omitempty"`
}

// Volume is one volume in a listing, inspection or create response.
type Volume struct {
	Name       string            `json:"Name"`
	Driver     string            `json:"Driver"`
	Mountpoint string            `json:"Mountpoint"`
	CreatedAt  string            `json:"CreatedAt,omitempty"`
	Scope      string            `json:"Scope"`
	Labels     map[string]string `json:"Labels,omitempty"`
	Options    map[string]string `json:"Options,omitempty"`
}

// VolumeList is the response to GET /volumes.
type VolumeList struct {
	Volumes  []Volume `json:"Volumes"`
	Warnings []string `json:"Warnings,omitempty"`
}

// ExecCreated is the response to POST /containers/{id}/exec.
type ExecCreated struct {
	ID string `json:"Id"`
}

// ExecDetails is the response to GET /exec/{id}/json.
type ExecDetails struct {
	ID            string        `json:"ID"`
	Running       bool          `json:"Running"`
	ExitCode      *int          `json:"ExitCode"`
	ContainerID   string        `json:"ContainerID"`
	OpenStdin     bool          `json:"OpenStdin"`
	OpenStdout    bool          `json:"OpenStdout"`
	OpenStderr    bool          `json:"OpenStderr"`
	ProcessConfig ProcessConfig `json:"ProcessConfig"`
}

// ProcessConfig describes the command an exec instance runs.
type ProcessConfig struct {
	EntryPoint string   `json:"entrypoint"`
	Arguments  []string `json:"arguments"`
	Privileged bool     `json:"privileged"`
	Tty        bool     `json:"tty"`
	User       string   `json:"user,omitempty"`
}
