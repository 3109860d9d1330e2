package identity

import (
	"os"

	"github.com/benmeehan/zima/pkg/file"
	"github.com/google/uuid"
)

// Identity holds the hardware node's persistent instance identifier.
type Identity struct {
	InstanceID string `json:"instance_id,omitempty"`
	Name       string `json:"node_name,omitempty"`
}

// NodeInfoInterface defines methods for managing node identity.
type NodeInfoInterface interface {
	LoadNodeInfo() error
	GetInstanceID() string
	GetIdentity() *Identity
}

// NodeInfo manages the node identity and its associated file operations.
type NodeInfo struct {
	NodeInfoFile string
	Identity     Identity
	fileOps      file.FileOperations
}

// NewNodeInfo initializes a new NodeInfo instance.
func NewNodeInfo(filePath string, fileOps file.FileOperations) *NodeInfo {
	return &NodeInfo{
		NodeInfoFile: filePath,
		fileOps:      fileOps,
	}
}

// LoadNodeInfo reads the identity file. When the file is missing or carries no
// instance id, a fresh UUID is generated and written back so the id survives restarts.
func (n *NodeInfo) LoadNodeInfo() error {
	err := n.fileOps.ReadJsonFile(n.NodeInfoFile, &n.Identity)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	if n.Identity.InstanceID != "" {
		return nil
	}

	n.Identity.InstanceID = uuid.New().String()
	return n.fileOps.WriteJsonFile(n.NodeInfoFile, n.Identity)
}

// GetIdentity returns the current node Identity.
func (n *NodeInfo) GetIdentity() *Identity {
	return &n.Identity
}

// GetInstanceID returns the current instance ID.
func (n *NodeInfo) GetInstanceID() string {
	return n.Identity.InstanceID
}
