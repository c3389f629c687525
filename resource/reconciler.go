package resource

import (
	"context"
	"fmt"

	"github.com/hupe1980/turnstream/core"
	"github.com/hupe1980/turnstream/logging"
)

// Options configure a Reconciler.
type Options struct {
	// Reporter receives every failure other than not-found.
	Reporter core.ErrorReporter
	Logger   logging.Logger
}

// Reconciler maps local keys to remote resource ids. Ensure calls are
// idempotent: a valid known id is returned unchanged, a stale or empty one
// is replaced by a freshly created resource.
type Reconciler struct {
	api      API
	reporter core.ErrorReporter
	logger   logging.Logger
}

// NewReconciler creates a Reconciler over api.
func NewReconciler(api API, optFns ...func(o *Options)) *Reconciler {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Reporter == nil {
		opts.Reporter = core.NewLogReporter(opts.Logger)
	}
	return &Reconciler{api: api, reporter: opts.Reporter, logger: opts.Logger}
}

// ensure implements retrieve-then-create. An empty known id skips the lookup.
func ensure(
	ctx context.Context,
	knownID string,
	retrieve func(context.Context, string) (string, error),
	create func(context.Context) (string, error),
) (string, error) {
	if knownID != "" {
		id, err := retrieve(ctx, knownID)
		if err != nil {
			return "", err
		}
		if id != "" {
			return id, nil
		}
	}
	return create(ctx)
}

func (r *Reconciler) fail(op string, err error) error {
	err = fmt.Errorf("%s: %w", op, err)
	r.reporter.Report(err)
	return err
}

// RetrieveFile returns id if the file exists, "" if id is empty or unknown.
func (r *Reconciler) RetrieveFile(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", nil
	}
	f, err := r.api.GetFile(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			r.logger.Debug("file not found", "file_id", id)
			return "", nil
		}
		return "", r.fail("retrieve file", err)
	}
	return f.ID, nil
}

// CreateFile uploads the file at path.
func (r *Reconciler) CreateFile(ctx context.Context, path string) (string, error) {
	f, err := r.api.UploadFile(ctx, path)
	if err != nil {
		return "", r.fail("upload file", err)
	}
	r.logger.Info("file uploaded", "file_id", f.ID, "path", path)
	return f.ID, nil
}

// EnsureFile returns knownID if it still exists, otherwise uploads path.
func (r *Reconciler) EnsureFile(ctx context.Context, path, knownID string) (string, error) {
	return ensure(ctx, knownID, r.RetrieveFile, func(ctx context.Context) (string, error) {
		return r.CreateFile(ctx, path)
	})
}

// DeleteFile removes a file.
func (r *Reconciler) DeleteFile(ctx context.Context, id string) (string, error) {
	if err := r.api.DeleteFile(ctx, id); err != nil {
		return "", r.fail("delete file", err)
	}
	return Deleted, nil
}

// ListFiles lists uploaded files.
func (r *Reconciler) ListFiles(ctx context.Context) ([]File, error) {
	files, err := r.api.ListFiles(ctx)
	if err != nil {
		return nil, r.fail("list files", err)
	}
	return files, nil
}

// RetrieveVectorStore returns id if the store exists, "" if id is empty or unknown.
func (r *Reconciler) RetrieveVectorStore(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", nil
	}
	vs, err := r.api.GetVectorStore(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			r.logger.Debug("vector store not found", "vector_store_id", id)
			return "", nil
		}
		return "", r.fail("retrieve vector store", err)
	}
	return vs.ID, nil
}

// CreateVectorStore creates an empty store.
func (r *Reconciler) CreateVectorStore(ctx context.Context, name string) (string, error) {
	vs, err := r.api.CreateVectorStore(ctx, name)
	if err != nil {
		return "", r.fail("create vector store", err)
	}
	r.logger.Info("vector store created", "vector_store_id", vs.ID, "name", name)
	return vs.ID, nil
}

// EnsureVectorStore returns knownID if it still exists, otherwise creates a
// store named name.
func (r *Reconciler) EnsureVectorStore(ctx context.Context, name, knownID string) (string, error) {
	return ensure(ctx, knownID, r.RetrieveVectorStore, func(ctx context.Context) (string, error) {
		return r.CreateVectorStore(ctx, name)
	})
}

// DeleteVectorStore removes a store.
func (r *Reconciler) DeleteVectorStore(ctx context.Context, id string) (string, error) {
	if err := r.api.DeleteVectorStore(ctx, id); err != nil {
		return "", r.fail("delete vector store", err)
	}
	return Deleted, nil
}

// ListVectorStores lists stores.
func (r *Reconciler) ListVectorStores(ctx context.Context) ([]VectorStore, error) {
	stores, err := r.api.ListVectorStores(ctx)
	if err != nil {
		return nil, r.fail("list vector stores", err)
	}
	return stores, nil
}

// RetrieveAttachment returns fileID if it is attached to storeID. Existence
// is decided from the store's listing, matching both ids.
func (r *Reconciler) RetrieveAttachment(ctx context.Context, storeID, fileID string) (string, error) {
	if storeID == "" || fileID == "" {
		return "", nil
	}
	atts, err := r.api.ListAttachments(ctx, storeID)
	if err != nil {
		if IsNotFound(err) {
			return "", nil
		}
		return "", r.fail("list attachments", err)
	}
	for _, a := range atts {
		if a.ID == fileID && a.VectorStoreID == storeID {
			return a.ID, nil
		}
	}
	return "", nil
}

// CreateAttachment attaches fileID to storeID.
func (r *Reconciler) CreateAttachment(ctx context.Context, storeID, fileID string) (string, error) {
	a, err := r.api.CreateAttachment(ctx, storeID, fileID)
	if err != nil {
		return "", r.fail("attach file", err)
	}
	r.logger.Info("file attached", "vector_store_id", storeID, "file_id", a.ID)
	return a.ID, nil
}

// EnsureAttachment makes sure fileID is attached to storeID.
func (r *Reconciler) EnsureAttachment(ctx context.Context, storeID, fileID string) (string, error) {
	retrieve := func(ctx context.Context, id string) (string, error) {
		return r.RetrieveAttachment(ctx, storeID, id)
	}
	return ensure(ctx, fileID, retrieve, func(ctx context.Context) (string, error) {
		return r.CreateAttachment(ctx, storeID, fileID)
	})
}

// DeleteAttachment detaches fileID from storeID.
func (r *Reconciler) DeleteAttachment(ctx context.Context, storeID, fileID string) (string, error) {
	if err := r.api.DeleteAttachment(ctx, storeID, fileID); err != nil {
		return "", r.fail("detach file", err)
	}
	return Deleted, nil
}

// ListAttachments lists files attached to storeID.
func (r *Reconciler) ListAttachments(ctx context.Context, storeID string) ([]Attachment, error) {
	atts, err := r.api.ListAttachments(ctx, storeID)
	if err != nil {
		return nil, r.fail("list attachments", err)
	}
	return atts, nil
}
