package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/brettbedarf/vdir/filesystem"
	"github.com/brettbedarf/vdir/fuse"
)

// MockViewer implements fuse.Viewer for testing across packages
type MockViewer struct {
	mock.Mock
}

func (m *MockViewer) View(fn func(tree *filesystem.Dir) error) error {
	args := m.Called(fn)

	// Run fn against the given tree when one is configured
	if tree, ok := args.Get(0).(*filesystem.Dir); ok {
		return fn(tree)
	}
	return args.Error(0)
}

var _ fuse.Viewer = (*MockViewer)(nil)
