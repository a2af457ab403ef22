package requests

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/brettbedarf/vdir/internal/util"
)

var (
	ErrMissingPath = errors.New("missing path")
	ErrUnknownType = errors.New("unknown node type")
)

// GetNodeType extracts the node type from JSON without full unmarshaling
func GetNodeType(data []byte) (NodeType, error) {
	var meta struct {
		Type NodeType `json:"type"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return "", err
	}
	return meta.Type, nil
}

// UnmarshalFileRequest handles file-specific unmarshaling
func UnmarshalFileRequest(data []byte) (*FileRequest, error) {
	var dto FileRequestDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, err
	}
	return convertFileDTO(dto)
}

// UnmarshalDirRequest handles explicit directory unmarshaling
func UnmarshalDirRequest(data []byte) (*DirRequest, error) {
	var dto DirRequestDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, err
	}
	return convertDirDTO(dto)
}

// Unmarshal decodes one JSON request of either type
func Unmarshal(data []byte) (Request, error) {
	nodeType, err := GetNodeType(data)
	if err != nil {
		return nil, err
	}
	switch nodeType {
	case FileNodeType:
		return asRequest[*FileRequest](UnmarshalFileRequest(data))
	case DirNodeType:
		return asRequest[*DirRequest](UnmarshalDirRequest(data))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, nodeType)
	}
}

// asRequest keeps a failed conversion from becoming a non-nil Request
func asRequest[T Request](req T, err error) (Request, error) {
	if err != nil {
		return nil, err
	}
	return req, nil
}

// unmarshalYAML is Unmarshal for one YAML sequence item
func unmarshalYAML(node *yaml.Node) (Request, error) {
	var meta struct {
		Type NodeType `yaml:"type"`
	}
	if err := node.Decode(&meta); err != nil {
		return nil, err
	}
	switch meta.Type {
	case FileNodeType:
		var dto FileRequestDTO
		if err := node.Decode(&dto); err != nil {
			return nil, err
		}
		return asRequest[*FileRequest](convertFileDTO(dto))
	case DirNodeType:
		var dto DirRequestDTO
		if err := node.Decode(&dto); err != nil {
			return nil, err
		}
		return asRequest[*DirRequest](convertDirDTO(dto))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, meta.Type)
	}
}

// ParseManifest decodes a list of requests in the given format ("json" or
// "yaml"). Bad items are skipped; their errors are combined and returned
// alongside the requests that did decode.
func ParseManifest(data []byte, format string) ([]Request, error) {
	var reqs []Request
	var errs error

	switch strings.ToLower(format) {
	case "json":
		var rawNodes []json.RawMessage
		if err := json.Unmarshal(data, &rawNodes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
		}
		for i, raw := range rawNodes {
			req, err := Unmarshal(raw)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("item %d: %w", i, err))
				continue
			}
			reqs = append(reqs, req)
		}
	case "yaml", "yml":
		var nodes []yaml.Node
		if err := yaml.Unmarshal(data, &nodes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
		}
		for i := range nodes {
			req, err := unmarshalYAML(&nodes[i])
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("item %d: %w", i, err))
				continue
			}
			reqs = append(reqs, req)
		}
	default:
		return nil, fmt.Errorf("unknown manifest format: %s", format)
	}

	return reqs, errs
}

// LoadManifestFile reads and parses a manifest, picking the format from the
// file extension (.json, .yaml, .yml)
func LoadManifestFile(path string) ([]Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return ParseManifest(data, ext)
}

// Conversion logic with defaults in the unmarshaling layer
func convertNodeDTO(dto NodeRequestDTO) (NodeRequest, error) {
	if dto.Path == "" {
		return NodeRequest{}, ErrMissingPath
	}
	return NodeRequest{
		Path: dto.Path,
		Type: dto.Type,
		UUID: util.ValueOrDefault(dto.UUID, uuid.New().String()),
	}, nil
}

func convertFileDTO(dto FileRequestDTO) (*FileRequest, error) {
	node, err := convertNodeDTO(dto.NodeRequestDTO)
	if err != nil {
		return nil, err
	}

	var content []byte
	switch {
	case dto.Content != nil && dto.ContentBase64 != nil:
		return nil, fmt.Errorf("%s: content and content_base64 are mutually exclusive", node.Path)
	case dto.ContentBase64 != nil:
		content, err = base64.StdEncoding.DecodeString(*dto.ContentBase64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", node.Path, err)
		}
	case dto.Content != nil:
		content = []byte(*dto.Content)
	}

	return &FileRequest{
		NodeRequest: node,
		Content:     content,
		Mode:        util.ValueOrDefault(dto.Mode, ""),
	}, nil
}

func convertDirDTO(dto DirRequestDTO) (*DirRequest, error) {
	node, err := convertNodeDTO(dto.NodeRequestDTO)
	if err != nil {
		return nil, err
	}
	return &DirRequest{
		NodeRequest: node,
		Overwrite:   util.ValueOrDefault(dto.Overwrite, false),
	}, nil
}
