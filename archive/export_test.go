package archive_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/brettbedarf/vdir/archive"
	"github.com/brettbedarf/vdir/filesystem"
	"github.com/brettbedarf/vdir/internal/mocks"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func createTree(t *testing.T, files map[string]string, order ...string) *filesystem.Dir {
	t.Helper()
	root := filesystem.NewDir("")
	for _, p := range order {
		f, err := root.OpenFile(p, true, filesystem.ModeReadWrite)
		require.NoError(t, err)
		_, err = f.WriteString(files[p])
		require.NoError(t, err)
	}
	return root
}

func readArchive(t *testing.T, f *filesystem.File) []archive.Entry {
	t.Helper()
	data, err := f.ReadAll()
	require.NoError(t, err)
	entries, err := archive.Entries(data)
	require.NoError(t, err)
	return entries
}

var sample = map[string]string{
	"top":      "t",
	"a/x":      "x",
	"a/c/deep": "d",
	"b/y":      string(bytes.Repeat([]byte("yes "), 512)),
}

func TestExport_RoundTrip(t *testing.T) {
	t.Parallel()
	root := createTree(t, sample, "top", "a/x", "a/c/deep", "b/y")

	out, err := archive.Export(root)
	require.NoError(t, err)

	assert.Equal(t, archive.DefaultName, out.Name())
	assert.Equal(t, filesystem.ModeRead, out.Mode())

	entries := readArchive(t, out)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
		assert.Equal(t, sample[e.Name], string(e.Data), e.Name)
		assert.Equal(t, archive.Deflate, e.Method, e.Name)
	}
	assert.Equal(t, []string{"top", "a/x", "a/c/deep", "b/y"}, names)
}

func TestExport_FromCurrentDir(t *testing.T) {
	t.Parallel()
	root := createTree(t, sample, "top", "a/x", "a/c/deep", "b/y")
	_, err := root.Cd("a")
	require.NoError(t, err)

	out, err := archive.Export(root)
	require.NoError(t, err)

	entries := readArchive(t, out)
	require.Len(t, entries, 2)
	assert.Equal(t, "x", entries[0].Name)
	assert.Equal(t, "c/deep", entries[1].Name)
}

func TestExport_Methods(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts []archive.Option
		want map[string]archive.Method
	}{
		{
			name: "exclude by basename",
			opts: []archive.Option{archive.WithExclude("y", "missing")},
			want: map[string]archive.Method{"top": archive.Deflate, "b/y": archive.Store, "img.png": archive.Deflate},
		},
		{
			name: "store everything",
			opts: []archive.Option{archive.WithMethod(archive.Store)},
			want: map[string]archive.Method{"top": archive.Store, "b/y": archive.Store, "img.png": archive.Store},
		},
		{
			name: "store compressed content",
			opts: []archive.Option{archive.WithStoreCompressed(true), archive.WithLevel(archive.BestSpeed)},
			want: map[string]archive.Method{"top": archive.Deflate, "b/y": archive.Deflate, "img.png": archive.Store},
		},
	}

	files := map[string]string{"top": "t", "b/y": sample["b/y"], "img.png": string(pngHeader)}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			root := createTree(t, files, "top", "b/y", "img.png")

			out, err := archive.Export(root, tt.opts...)
			require.NoError(t, err)

			entries := readArchive(t, out)
			require.Len(t, entries, len(tt.want))
			for _, e := range entries {
				assert.Equal(t, tt.want[e.Name], e.Method, e.Name)
				assert.Equal(t, files[e.Name], string(e.Data), e.Name)
			}
		})
	}
}

func TestExport_Empty(t *testing.T) {
	t.Parallel()

	out, err := archive.Export(filesystem.NewDir(""))
	require.NoError(t, err)
	assert.Empty(t, readArchive(t, out))
}

func TestWriteTo_Mock(t *testing.T) {
	t.Parallel()
	root := createTree(t, sample, "top", "a/x")

	ew := &mocks.MockEntryWriter{}
	ew.On("WriteEntry", "top", []byte("t"), archive.Deflate).Return(nil).Once()
	ew.On("WriteEntry", "a/x", []byte("x"), archive.Store).Return(nil).Once()

	err := archive.WriteTo(root, ew, archive.WithExclude("x"))
	require.NoError(t, err)
	ew.AssertExpectations(t)
	ew.AssertNotCalled(t, "Close")
}

func TestWriteTo_StopsOnError(t *testing.T) {
	t.Parallel()
	root := createTree(t, sample, "top", "a/x")
	boom := errors.New("boom")

	ew := &mocks.MockEntryWriter{}
	ew.On("WriteEntry", mock.Anything, mock.Anything, mock.Anything).Return(boom)

	err := archive.WriteTo(root, ew)
	assert.ErrorIs(t, err, boom)
	ew.AssertNumberOfCalls(t, "WriteEntry", 1)
}

func TestParseMethod(t *testing.T) {
	t.Parallel()

	m, err := archive.ParseMethod("DEFLATE")
	require.NoError(t, err)
	assert.Equal(t, archive.Deflate, m)

	m, err = archive.ParseMethod("store")
	require.NoError(t, err)
	assert.Equal(t, archive.Store, m)
	assert.Equal(t, "store", m.String())

	_, err = archive.ParseMethod("bzip2")
	assert.Error(t, err)
}
