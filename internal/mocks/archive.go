package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/brettbedarf/vdir/archive"
)

// MockEntryWriter implements archive.EntryWriter for testing across packages
type MockEntryWriter struct {
	mock.Mock
}

func (m *MockEntryWriter) WriteEntry(name string, data []byte, method archive.Method) error {
	args := m.Called(name, data, method)

	// Handle function return types (for complex tests)
	if fn, ok := args.Get(0).(func(string, []byte, archive.Method) error); ok {
		return fn(name, data, method)
	}
	return args.Error(0)
}

func (m *MockEntryWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ archive.EntryWriter = (*MockEntryWriter)(nil)
