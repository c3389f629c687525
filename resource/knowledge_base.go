package resource

import (
	"context"
	"sort"
)

// KnowledgeBase describes a vector store and the local files it should
// contain. FileIDs maps a local path to its last known remote file id.
type KnowledgeBase struct {
	Name          string
	VectorStoreID string
	FileIDs       map[string]string
}

// EnsureKnowledgeBase reconciles the store, every file and every attachment
// and returns kb with refreshed ids. Files are processed in path order and
// the first failure stops the run; ids reconciled before it are kept in the
// result.
func (r *Reconciler) EnsureKnowledgeBase(ctx context.Context, kb KnowledgeBase) (KnowledgeBase, error) {
	out := KnowledgeBase{Name: kb.Name, FileIDs: make(map[string]string, len(kb.FileIDs))}
	for path, id := range kb.FileIDs {
		out.FileIDs[path] = id
	}

	storeID, err := r.EnsureVectorStore(ctx, kb.Name, kb.VectorStoreID)
	if err != nil {
		return out, err
	}
	out.VectorStoreID = storeID

	paths := make([]string, 0, len(kb.FileIDs))
	for path := range kb.FileIDs {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		fileID, err := r.EnsureFile(ctx, path, kb.FileIDs[path])
		if err != nil {
			return out, err
		}
		out.FileIDs[path] = fileID
		if _, err := r.EnsureAttachment(ctx, storeID, fileID); err != nil {
			return out, err
		}
	}
	return out, nil
}
