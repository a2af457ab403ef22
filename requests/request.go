package requests

// NodeType valid types are FileNodeType "file", DirNodeType "dir"
type NodeType string

const (
	FileNodeType NodeType = "file"
	DirNodeType  NodeType = "dir"
)

// Request is a FileRequest or DirRequest
type Request interface {
	GetPath() string
	GetType() NodeType
	GetUUID() string
}

// NodeRequest has common fields embedded in concrete request types
type NodeRequest struct {
	Path string
	Type NodeType
	UUID string // Identifies the request in logs and errors (Default random)
}

func (r *NodeRequest) GetPath() string {
	return r.Path
}

func (r *NodeRequest) GetType() NodeType {
	return r.Type
}

func (r *NodeRequest) GetUUID() string {
	return r.UUID
}

// FileRequest creates (or reopens) a file and writes Content at its start
type FileRequest struct {
	NodeRequest
	Content []byte
	Mode    string // Access mode letters; empty means the configured default
}

// DirRequest creates a directory and any missing parents
type DirRequest struct {
	NodeRequest
	Overwrite bool // Replace files in the way with directories
}

var (
	_ Request = (*FileRequest)(nil)
	_ Request = (*DirRequest)(nil)
)
