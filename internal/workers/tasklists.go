package workers

import (
	"errors"

	"github.com/taskfolk/tasklistd/internal/kv"
)

// TaskListWorker owns the task-list records of each identity. It holds no
// per-request state; every call goes straight to the store.
type TaskListWorker struct {
	store kv.Store
}

// NewTaskListWorker creates a worker over the given store.
func NewTaskListWorker(store kv.Store) *TaskListWorker {
	return &TaskListWorker{store: store}
}

// GetAllTasklist returns the owner's task-list names in key order. An owner
// with no lists gets an empty slice, not an error.
func (w *TaskListWorker) GetAllTasklist(req Request) ([]string, error) {
	if err := req.requireOwner(); err != nil {
		return nil, err
	}

	prefix := tasklistPrefix(req.Owner)
	entries, err := w.store.ScanPrefix(prefix)
	if err != nil {
		return nil, storeError(err, "scan task lists for %q", req.Owner)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if name, ok := nameFromKey(e.Key, prefix); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// Query returns the content of one task list.
func (w *TaskListWorker) Query(req Request) (Content, error) {
	if err := req.requireList(); err != nil {
		return Content{}, err
	}

	value, err := w.store.Get(tasklistKey(req.Owner, req.List))
	if errors.Is(err, kv.ErrNotFound) {
		return Content{}, notFound("task list %q", req.List)
	}
	if err != nil {
		return Content{}, storeError(err, "read task list %q", req.List)
	}

	content, err := decodeRecord(value)
	if err != nil {
		return Content{}, storeError(err, "decode task list %q", req.List)
	}
	return content, nil
}

// Create stores a new task list and returns the name actually assigned,
// which may carry a numeric suffix if the requested name was taken.
func (w *TaskListWorker) Create(req Request, content Content) (string, error) {
	if err := req.requireOwner(); err != nil {
		return "", err
	}

	return createUnique(w.store, func(name string) string {
		return tasklistKey(req.Owner, name)
	}, content)
}

// Revise applies a partial update to an existing task list. Fields absent
// from content keep their stored values; a name that differs from the list
// key is rejected, renaming is not supported through this path.
func (w *TaskListWorker) Revise(req Request, content Content) error {
	if err := req.requireList(); err != nil {
		return err
	}
	if content.Name != "" && content.Name != req.List {
		return invalidArgument("task list name is immutable, cannot change %q to %q", req.List, content.Name)
	}

	key := tasklistKey(req.Owner, req.List)
	value, err := w.store.Get(key)
	if errors.Is(err, kv.ErrNotFound) {
		return notFound("task list %q", req.List)
	}
	if err != nil {
		return storeError(err, "read task list %q", req.List)
	}

	stored, err := decodeRecord(value)
	if err != nil {
		return storeError(err, "decode task list %q", req.List)
	}
	stored.merge(content)

	updated, err := encodeRecord(stored)
	if err != nil {
		return storeError(err, "serialize task list %q", req.List)
	}
	if err := w.store.Put(key, updated); err != nil {
		return storeError(err, "write task list %q", req.List)
	}
	return nil
}

// Delete removes a task list. Deleting an absent list reports NotFound but
// mutates nothing.
func (w *TaskListWorker) Delete(req Request) error {
	if err := req.requireList(); err != nil {
		return err
	}

	err := w.store.Delete(tasklistKey(req.Owner, req.List))
	if errors.Is(err, kv.ErrNotFound) {
		return notFound("task list %q", req.List)
	}
	if err != nil {
		return storeError(err, "delete task list %q", req.List)
	}
	return nil
}

// Exists reports whether the task list is present. Absence is a false
// result, never an error; only store failures surface.
func (w *TaskListWorker) Exists(req Request) (bool, error) {
	if err := req.requireList(); err != nil {
		return false, err
	}

	_, err := w.store.Get(tasklistKey(req.Owner, req.List))
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, storeError(err, "probe task list %q", req.List)
	}
	return true, nil
}
