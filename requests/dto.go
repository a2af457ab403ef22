package requests

// NodeRequestDTO is the JSON/YAML representation of [NodeRequest]
type NodeRequestDTO struct {
	Path string   `json:"path" yaml:"path"`
	Type NodeType `json:"type" yaml:"type"`
	UUID *string  `json:"uuid,omitempty" yaml:"uuid,omitempty"` // Optional id to correlate errors and logs
}

// FileRequestDTO is the JSON/YAML representation of [FileRequest].
// Content and ContentBase64 are mutually exclusive.
type FileRequestDTO struct {
	NodeRequestDTO `yaml:",inline"`
	Content        *string `json:"content,omitempty" yaml:"content,omitempty"`
	ContentBase64  *string `json:"content_base64,omitempty" yaml:"content_base64,omitempty"` // Binary content
	Mode           *string `json:"mode,omitempty" yaml:"mode,omitempty"`                     // i.e. "rw" (Default from config)
}

type DirRequestDTO struct {
	NodeRequestDTO `yaml:",inline"`
	Overwrite      *bool `json:"overwrite,omitempty" yaml:"overwrite,omitempty"`
}
