package resource

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/turnstream/core"
)

// MockAPI is a testify mock of the remote resource API.
type MockAPI struct{ mock.Mock }

var _ API = (*MockAPI)(nil)

func (m *MockAPI) ListFiles(ctx context.Context) ([]File, error) {
	args := m.Called(ctx)
	files, _ := args.Get(0).([]File)
	return files, args.Error(1)
}

func (m *MockAPI) GetFile(ctx context.Context, id string) (File, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(File), args.Error(1)
}

func (m *MockAPI) UploadFile(ctx context.Context, path string) (File, error) {
	args := m.Called(ctx, path)
	return args.Get(0).(File), args.Error(1)
}

func (m *MockAPI) DeleteFile(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAPI) ListVectorStores(ctx context.Context) ([]VectorStore, error) {
	args := m.Called(ctx)
	stores, _ := args.Get(0).([]VectorStore)
	return stores, args.Error(1)
}

func (m *MockAPI) GetVectorStore(ctx context.Context, id string) (VectorStore, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(VectorStore), args.Error(1)
}

func (m *MockAPI) CreateVectorStore(ctx context.Context, name string) (VectorStore, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(VectorStore), args.Error(1)
}

func (m *MockAPI) DeleteVectorStore(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAPI) ListAttachments(ctx context.Context, storeID string) ([]Attachment, error) {
	args := m.Called(ctx, storeID)
	atts, _ := args.Get(0).([]Attachment)
	return atts, args.Error(1)
}

func (m *MockAPI) CreateAttachment(ctx context.Context, storeID, fileID string) (Attachment, error) {
	args := m.Called(ctx, storeID, fileID)
	return args.Get(0).(Attachment), args.Error(1)
}

func (m *MockAPI) DeleteAttachment(ctx context.Context, storeID, fileID string) error {
	return m.Called(ctx, storeID, fileID).Error(0)
}

func newReconciler(api *MockAPI) (*Reconciler, *core.Collector) {
	c := &core.Collector{}
	return NewReconciler(api, func(o *Options) { o.Reporter = c }), c
}

var notFound = fmt.Errorf("%w: 404", ErrNotFound)

func TestEnsure_EmptyKnownIDCreatesWithoutRetrieve(t *testing.T) {
	ctx := context.Background()
	api := &MockAPI{}
	api.On("UploadFile", ctx, "a.md").Return(File{ID: "file-1"}, nil).Once()
	api.On("CreateVectorStore", ctx, "kb").Return(VectorStore{ID: "vs-1"}, nil).Once()
	r, _ := newReconciler(api)

	id, err := r.EnsureFile(ctx, "a.md", "")
	require.NoError(t, err)
	assert.Equal(t, "file-1", id)

	id, err = r.EnsureVectorStore(ctx, "kb", "")
	require.NoError(t, err)
	assert.Equal(t, "vs-1", id)

	api.AssertNotCalled(t, "GetFile", mock.Anything, mock.Anything)
	api.AssertNotCalled(t, "GetVectorStore", mock.Anything, mock.Anything)
	api.AssertNumberOfCalls(t, "UploadFile", 1)
	api.AssertNumberOfCalls(t, "CreateVectorStore", 1)
}

func TestEnsure_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	api := &MockAPI{}
	api.On("UploadFile", ctx, "a.md").Return(File{ID: "file-1"}, nil).Once()
	api.On("GetFile", ctx, "file-1").Return(File{ID: "file-1"}, nil)
	api.On("CreateVectorStore", ctx, "kb").Return(VectorStore{ID: "vs-1"}, nil).Once()
	api.On("GetVectorStore", ctx, "vs-1").Return(VectorStore{ID: "vs-1"}, nil)
	api.On("ListAttachments", ctx, "vs-1").Return([]Attachment{}, nil).Once()
	api.On("CreateAttachment", ctx, "vs-1", "file-1").Return(Attachment{ID: "file-1", VectorStoreID: "vs-1"}, nil).Once()
	api.On("ListAttachments", ctx, "vs-1").Return([]Attachment{{ID: "file-1", VectorStoreID: "vs-1"}}, nil)
	r, _ := newReconciler(api)

	first, err := r.EnsureFile(ctx, "a.md", "")
	require.NoError(t, err)
	second, err := r.EnsureFile(ctx, "a.md", first)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	vs, err := r.EnsureVectorStore(ctx, "kb", "")
	require.NoError(t, err)
	vs2, err := r.EnsureVectorStore(ctx, "kb", vs)
	require.NoError(t, err)
	assert.Equal(t, vs, vs2)

	att, err := r.EnsureAttachment(ctx, vs, first)
	require.NoError(t, err)
	att2, err := r.EnsureAttachment(ctx, vs, first)
	require.NoError(t, err)
	assert.Equal(t, att, att2)

	api.AssertNumberOfCalls(t, "UploadFile", 1)
	api.AssertNumberOfCalls(t, "CreateVectorStore", 1)
	api.AssertNumberOfCalls(t, "CreateAttachment", 1)
}

func TestRetrieve_NotFoundResolvesEmpty(t *testing.T) {
	ctx := context.Background()
	api := &MockAPI{}
	api.On("GetFile", ctx, "gone").Return(File{}, notFound)
	api.On("GetVectorStore", ctx, "gone").Return(VectorStore{}, notFound)
	api.On("ListAttachments", ctx, "gone").Return(nil, notFound)
	r, reported := newReconciler(api)

	id, err := r.RetrieveFile(ctx, "gone")
	require.NoError(t, err)
	assert.Empty(t, id)

	id, err = r.RetrieveVectorStore(ctx, "gone")
	require.NoError(t, err)
	assert.Empty(t, id)

	id, err = r.RetrieveAttachment(ctx, "gone", "file-1")
	require.NoError(t, err)
	assert.Empty(t, id)

	assert.Empty(t, reported.Errors())
}

func TestRetrieve_EmptyIDResolvesEmpty(t *testing.T) {
	api := &MockAPI{}
	r, _ := newReconciler(api)

	id, err := r.RetrieveFile(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, id)
	api.AssertNotCalled(t, "GetFile", mock.Anything, mock.Anything)
}

func TestEnsure_StaleIDSelfHeals(t *testing.T) {
	ctx := context.Background()
	api := &MockAPI{}
	api.On("GetVectorStore", ctx, "vs-old").Return(VectorStore{}, notFound)
	api.On("CreateVectorStore", ctx, "kb").Return(VectorStore{ID: "vs-new"}, nil)
	r, _ := newReconciler(api)

	id, err := r.EnsureVectorStore(ctx, "kb", "vs-old")
	require.NoError(t, err)
	assert.Equal(t, "vs-new", id)
}

func TestRetrieveAttachment_MatchesBothIDs(t *testing.T) {
	ctx := context.Background()
	api := &MockAPI{}
	api.On("ListAttachments", ctx, "vs-1").Return([]Attachment{
		{ID: "file-1", VectorStoreID: "vs-other"},
		{ID: "file-2", VectorStoreID: "vs-1"},
	}, nil)
	r, _ := newReconciler(api)

	id, err := r.RetrieveAttachment(ctx, "vs-1", "file-1")
	require.NoError(t, err)
	assert.Empty(t, id)

	id, err = r.RetrieveAttachment(ctx, "vs-1", "file-2")
	require.NoError(t, err)
	assert.Equal(t, "file-2", id)
}

func TestFailuresAreReportedAndReturned(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("500 internal")
	api := &MockAPI{}
	api.On("GetFile", ctx, "file-1").Return(File{}, boom)
	api.On("UploadFile", ctx, "a.md").Return(File{}, boom)
	r, reported := newReconciler(api)

	_, err := r.EnsureFile(ctx, "a.md", "file-1")
	assert.ErrorIs(t, err, boom)
	api.AssertNotCalled(t, "UploadFile", mock.Anything, mock.Anything)

	_, err = r.CreateFile(ctx, "a.md")
	assert.ErrorIs(t, err, boom)
	assert.Len(t, reported.Errors(), 2)
}

func TestDeletesReturnConfirmationToken(t *testing.T) {
	ctx := context.Background()
	api := &MockAPI{}
	api.On("DeleteFile", ctx, "file-1").Return(nil)
	api.On("DeleteVectorStore", ctx, "vs-1").Return(nil)
	api.On("DeleteAttachment", ctx, "vs-1", "file-1").Return(nil)
	api.On("DeleteFile", ctx, "file-2").Return(errors.New("denied"))
	r, reported := newReconciler(api)

	for _, del := range []func() (string, error){
		func() (string, error) { return r.DeleteFile(ctx, "file-1") },
		func() (string, error) { return r.DeleteVectorStore(ctx, "vs-1") },
		func() (string, error) { return r.DeleteAttachment(ctx, "vs-1", "file-1") },
	} {
		tok, err := del()
		require.NoError(t, err)
		assert.Equal(t, Deleted, tok)
	}

	tok, err := r.DeleteFile(ctx, "file-2")
	assert.Error(t, err)
	assert.Empty(t, tok)
	assert.Len(t, reported.Errors(), 1)
}

func TestEnsureKnowledgeBase(t *testing.T) {
	ctx := context.Background()
	api := &MockAPI{}
	api.On("CreateVectorStore", ctx, "kb").Return(VectorStore{ID: "vs-1"}, nil)
	api.On("UploadFile", ctx, "a.md").Return(File{ID: "file-a"}, nil)
	api.On("ListAttachments", ctx, "vs-1").Return([]Attachment{}, nil)
	api.On("CreateAttachment", ctx, "vs-1", "file-a").Return(Attachment{ID: "file-a", VectorStoreID: "vs-1"}, nil)
	r, _ := newReconciler(api)

	kb, err := r.EnsureKnowledgeBase(ctx, KnowledgeBase{Name: "kb", FileIDs: map[string]string{"a.md": ""}})
	require.NoError(t, err)
	assert.Equal(t, "vs-1", kb.VectorStoreID)
	assert.Equal(t, "file-a", kb.FileIDs["a.md"])
	api.AssertExpectations(t)
}

func TestEnsureKnowledgeBase_StopsAtFirstFailureInPathOrder(t *testing.T) {
	ctx := context.Background()
	api := &MockAPI{}
	api.On("GetVectorStore", ctx, "vs-1").Return(VectorStore{ID: "vs-1"}, nil)
	api.On("UploadFile", ctx, "a.md").Return(File{ID: "file-a"}, nil)
	api.On("UploadFile", ctx, "b.md").Return(File{}, errors.New("413 too large"))
	api.On("ListAttachments", ctx, "vs-1").Return([]Attachment{}, nil)
	api.On("CreateAttachment", ctx, "vs-1", "file-a").Return(Attachment{ID: "file-a", VectorStoreID: "vs-1"}, nil)
	r, _ := newReconciler(api)

	kb, err := r.EnsureKnowledgeBase(ctx, KnowledgeBase{
		Name:          "kb",
		VectorStoreID: "vs-1",
		FileIDs:       map[string]string{"c.md": "", "b.md": "", "a.md": ""},
	})
	require.Error(t, err)
	assert.Equal(t, "file-a", kb.FileIDs["a.md"])
	assert.Empty(t, kb.FileIDs["b.md"])
	assert.Empty(t, kb.FileIDs["c.md"])
	api.AssertNotCalled(t, "UploadFile", ctx, "c.md")
	api.AssertExpectations(t)
}
