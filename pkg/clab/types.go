package clab

// Default node spec values for exported topologies. They match the SR OS
// container images containerlab deploys for Nokia devices.
const (
	DefaultKind  = "nokia-sros"
	DefaultImage = "containerlab/vr-sros"
)

// Node labels carrying graph attributes that have no native containerlab
// field. Import restores them.
const (
	LabelName = "topolab.name" // display name, when it differs from the ID
	LabelRole = "topolab.role" // spine or leaf placement hint
)

// Document is a containerlab topology file.
type Document struct {
	Name     string   `yaml:"name,omitempty"`
	Topology Topology `yaml:"topology"`
}

// Topology holds the node and link declarations.
type Topology struct {
	Nodes map[string]NodeSpec `yaml:"nodes"`
	Links []LinkSpec          `yaml:"links"`
}

// NodeSpec describes one lab node.
type NodeSpec struct {
	Kind     string            `yaml:"kind,omitempty"`
	Image    string            `yaml:"image,omitempty"`
	MgmtIPv4 string            `yaml:"mgmt-ipv4,omitempty"`
	Labels   map[string]string `yaml:"labels,omitempty"`
}

// LinkSpec declares one point-to-point link as a pair of
// "<node>:<interface>" endpoint strings.
type LinkSpec struct {
	Endpoints []string `yaml:"endpoints"`
}
