package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/openai/openai-go"

	"github.com/hupe1980/turnstream/resource"
)

var _ resource.API = (*Resources)(nil)

// Resources implements resource.API over the Files and Vector Stores APIs.
// Missing resources surface as errors matching resource.ErrNotFound.
type Resources struct {
	client *openai.Client
	opts   Options
}

// NewResources creates a Resources adapter from an existing client.
func NewResources(client *openai.Client, optFns ...func(o *Options)) *Resources {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Resources{client: client, opts: opts}
}

// classify maps a 404 API error onto resource.ErrNotFound.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return errors.Join(resource.ErrNotFound, err)
	}
	return err
}

// ListFiles implements resource.FileAPI.
func (r *Resources) ListFiles(ctx context.Context) ([]resource.File, error) {
	iter := r.client.Files.ListAutoPaging(ctx, openai.FileListParams{}, r.opts.RequestOptions...)
	var files []resource.File
	for iter.Next() {
		f := iter.Current()
		files = append(files, resource.File{ID: f.ID, Filename: f.Filename, Bytes: f.Bytes})
	}
	if err := iter.Err(); err != nil {
		return nil, classify(err)
	}
	return files, nil
}

// GetFile implements resource.FileAPI.
func (r *Resources) GetFile(ctx context.Context, id string) (resource.File, error) {
	f, err := r.client.Files.Get(ctx, id, r.opts.RequestOptions...)
	if err != nil {
		return resource.File{}, classify(err)
	}
	return resource.File{ID: f.ID, Filename: f.Filename, Bytes: f.Bytes}, nil
}

// UploadFile implements resource.FileAPI.
func (r *Resources) UploadFile(ctx context.Context, path string) (resource.File, error) {
	fh, err := os.Open(path) // #nosec G304 -- path is supplied by the operator
	if err != nil {
		return resource.File{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = fh.Close() }()

	f, err := r.client.Files.New(ctx, openai.FileNewParams{
		File:    fh,
		Purpose: openai.FilePurposeAssistants,
	}, r.opts.RequestOptions...)
	if err != nil {
		return resource.File{}, classify(err)
	}
	return resource.File{ID: f.ID, Filename: f.Filename, Bytes: f.Bytes}, nil
}

// DeleteFile implements resource.FileAPI.
func (r *Resources) DeleteFile(ctx context.Context, id string) error {
	_, err := r.client.Files.Delete(ctx, id, r.opts.RequestOptions...)
	return classify(err)
}

// ListVectorStores implements resource.VectorStoreAPI.
func (r *Resources) ListVectorStores(ctx context.Context) ([]resource.VectorStore, error) {
	iter := r.client.VectorStores.ListAutoPaging(ctx, openai.VectorStoreListParams{}, r.opts.RequestOptions...)
	var stores []resource.VectorStore
	for iter.Next() {
		vs := iter.Current()
		stores = append(stores, resource.VectorStore{ID: vs.ID, Name: vs.Name})
	}
	if err := iter.Err(); err != nil {
		return nil, classify(err)
	}
	return stores, nil
}

// GetVectorStore implements resource.VectorStoreAPI.
func (r *Resources) GetVectorStore(ctx context.Context, id string) (resource.VectorStore, error) {
	vs, err := r.client.VectorStores.Get(ctx, id, r.opts.RequestOptions...)
	if err != nil {
		return resource.VectorStore{}, classify(err)
	}
	return resource.VectorStore{ID: vs.ID, Name: vs.Name}, nil
}

// CreateVectorStore implements resource.VectorStoreAPI.
func (r *Resources) CreateVectorStore(ctx context.Context, name string) (resource.VectorStore, error) {
	vs, err := r.client.VectorStores.New(ctx, openai.VectorStoreNewParams{
		Name: openai.String(name),
	}, r.opts.RequestOptions...)
	if err != nil {
		return resource.VectorStore{}, classify(err)
	}
	return resource.VectorStore{ID: vs.ID, Name: vs.Name}, nil
}

// DeleteVectorStore implements resource.VectorStoreAPI.
func (r *Resources) DeleteVectorStore(ctx context.Context, id string) error {
	_, err := r.client.VectorStores.Delete(ctx, id, r.opts.RequestOptions...)
	return classify(err)
}

// ListAttachments implements resource.AttachmentAPI.
func (r *Resources) ListAttachments(ctx context.Context, storeID string) ([]resource.Attachment, error) {
	iter := r.client.VectorStores.Files.ListAutoPaging(ctx, storeID, openai.VectorStoreFileListParams{}, r.opts.RequestOptions...)
	var atts []resource.Attachment
	for iter.Next() {
		f := iter.Current()
		atts = append(atts, resource.Attachment{ID: f.ID, VectorStoreID: f.VectorStoreID, Status: string(f.Status)})
	}
	if err := iter.Err(); err != nil {
		return nil, classify(err)
	}
	return atts, nil
}

// CreateAttachment implements resource.AttachmentAPI.
func (r *Resources) CreateAttachment(ctx context.Context, storeID, fileID string) (resource.Attachment, error) {
	f, err := r.client.VectorStores.Files.New(ctx, storeID, openai.VectorStoreFileNewParams{
		FileID: fileID,
	}, r.opts.RequestOptions...)
	if err != nil {
		return resource.Attachment{}, classify(err)
	}
	return resource.Attachment{ID: f.ID, VectorStoreID: f.VectorStoreID, Status: string(f.Status)}, nil
}

// DeleteAttachment implements resource.AttachmentAPI.
func (r *Resources) DeleteAttachment(ctx context.Context, storeID, fileID string) error {
	_, err := r.client.VectorStores.Files.Delete(ctx, storeID, fileID, r.opts.RequestOptions...)
	return classify(err)
}
