package workers

import (
	"errors"

	"github.com/taskfolk/tasklistd/internal/kv"
)

// ListProber is the one capability TaskWorker needs from the task-list
// side: confirming that a parent list exists. The dependency runs one way;
// TaskListWorker knows nothing about tasks.
type ListProber interface {
	Exists(req Request) (bool, error)
}

// TaskWorker owns the task records inside each (owner, list) scope.
// Mutations consult the prober first: tasks cannot exist under a list that
// does not.
type TaskWorker struct {
	store kv.Store
	lists ListProber
}

// NewTaskWorker creates a worker over the given store and parent-list probe.
func NewTaskWorker(store kv.Store, lists ListProber) *TaskWorker {
	return &TaskWorker{store: store, lists: lists}
}

// requireParent fails with NotFound when the request's list is absent.
func (w *TaskWorker) requireParent(req Request) error {
	ok, err := w.lists.Exists(Request{Owner: req.Owner, List: req.List})
	if err != nil {
		return err
	}
	if !ok {
		return notFound("task list %q", req.List)
	}
	return nil
}

// GetAllTasksName returns the list's task names in key order.
func (w *TaskWorker) GetAllTasksName(req Request) ([]string, error) {
	if err := req.requireList(); err != nil {
		return nil, err
	}
	if err := w.requireParent(req); err != nil {
		return nil, err
	}

	prefix := taskPrefix(req.Owner, req.List)
	entries, err := w.store.ScanPrefix(prefix)
	if err != nil {
		return nil, storeError(err, "scan tasks in %q", req.List)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if name, ok := nameFromKey(e.Key, prefix); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// Query returns the content of one task.
func (w *TaskWorker) Query(req Request) (Content, error) {
	if err := req.requireItem(); err != nil {
		return Content{}, err
	}
	if err := w.requireParent(req); err != nil {
		return Content{}, err
	}

	value, err := w.store.Get(taskKey(req.Owner, req.List, req.Item))
	if errors.Is(err, kv.ErrNotFound) {
		return Content{}, notFound("task %q in list %q", req.Item, req.List)
	}
	if err != nil {
		return Content{}, storeError(err, "read task %q", req.Item)
	}

	content, err := decodeRecord(value)
	if err != nil {
		return Content{}, storeError(err, "decode task %q", req.Item)
	}
	return content, nil
}

// Create stores a new task under an existing list and returns the name
// actually assigned. The duplicate-name policy is the same suffix probe
// task lists use.
func (w *TaskWorker) Create(req Request, content Content) (string, error) {
	if err := req.requireList(); err != nil {
		return "", err
	}
	if err := w.requireParent(req); err != nil {
		return "", err
	}

	return createUnique(w.store, func(name string) string {
		return taskKey(req.Owner, req.List, name)
	}, content)
}

// Revise applies a partial update to an existing task, with the same
// immutable-name rule as task lists.
func (w *TaskWorker) Revise(req Request, content Content) error {
	if err := req.requireItem(); err != nil {
		return err
	}
	if content.Name != "" && content.Name != req.Item {
		return invalidArgument("task name is immutable, cannot change %q to %q", req.Item, content.Name)
	}
	if err := w.requireParent(req); err != nil {
		return err
	}

	key := taskKey(req.Owner, req.List, req.Item)
	value, err := w.store.Get(key)
	if errors.Is(err, kv.ErrNotFound) {
		return notFound("task %q in list %q", req.Item, req.List)
	}
	if err != nil {
		return storeError(err, "read task %q", req.Item)
	}

	stored, err := decodeRecord(value)
	if err != nil {
		return storeError(err, "decode task %q", req.Item)
	}
	stored.merge(content)

	updated, err := encodeRecord(stored)
	if err != nil {
		return storeError(err, "serialize task %q", req.Item)
	}
	if err := w.store.Put(key, updated); err != nil {
		return storeError(err, "write task %q", req.Item)
	}
	return nil
}

// Delete removes a task. Deleting an absent task reports NotFound but
// mutates nothing.
func (w *TaskWorker) Delete(req Request) error {
	if err := req.requireItem(); err != nil {
		return err
	}
	if err := w.requireParent(req); err != nil {
		return err
	}

	err := w.store.Delete(taskKey(req.Owner, req.List, req.Item))
	if errors.Is(err, kv.ErrNotFound) {
		return notFound("task %q in list %q", req.Item, req.List)
	}
	if err != nil {
		return storeError(err, "delete task %q", req.Item)
	}
	return nil
}
