package workers

import (
	"errors"
	"reflect"
	"testing"

	"github.com/taskfolk/tasklistd/internal/kv"
)

func newListWorker(t *testing.T) (*TaskListWorker, *kv.MemStore) {
	t.Helper()
	store := kv.NewMemStore()
	return NewTaskListWorker(store), store
}

func TestTaskListCreateQueryRoundTrip(t *testing.T) {
	w, _ := newListWorker(t)
	req := Request{Owner: "a@x.com"}

	in := Content{Name: "groceries", Content: "weekly shopping", Date: "2026-08-30"}
	assigned, err := w.Create(req, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if assigned != "groceries" {
		t.Fatalf("assigned: got %q, want %q", assigned, "groceries")
	}

	got, err := w.Query(Request{Owner: "a@x.com", List: assigned})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if got != in {
		t.Errorf("round trip: got %+v, want %+v", got, in)
	}
}

func TestTaskListCreateSuffixesDuplicates(t *testing.T) {
	w, _ := newListWorker(t)
	req := Request{Owner: "a@x.com"}

	first, err := w.Create(req, Content{Name: "groceries"})
	if err != nil {
		t.Fatalf("first Create: %v", err)
	}
	second, err := w.Create(req, Content{Name: "groceries"})
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}

	if first != "groceries" || second != "groceries-2" {
		t.Fatalf("assigned names: got %q, %q; want groceries, groceries-2", first, second)
	}

	names, err := w.GetAllTasklist(req)
	if err != nil {
		t.Fatalf("GetAllTasklist: %v", err)
	}
	want := []string{"groceries", "groceries-2"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("names: got %v, want %v", names, want)
	}

	// Both records are independently retrievable.
	for _, name := range want {
		got, err := w.Query(Request{Owner: "a@x.com", List: name})
		if err != nil {
			t.Fatalf("Query %q: %v", name, err)
		}
		if got.Name != name {
			t.Errorf("stored name: got %q, want %q", got.Name, name)
		}
	}
}

func TestTaskListCreateRequiresName(t *testing.T) {
	w, _ := newListWorker(t)

	_, err := w.Create(Request{Owner: "a@x.com"}, Content{Content: "no name"})
	if CodeOf(err) != CodeInvalidArgument {
		t.Fatalf("code: got %v, want %v", CodeOf(err), CodeInvalidArgument)
	}
}

func TestTaskListCreateRequiresOwner(t *testing.T) {
	w, store := newListWorker(t)

	_, err := w.Create(Request{}, Content{Name: "groceries"})
	if CodeOf(err) != CodeInvalidArgument {
		t.Fatalf("code: got %v, want %v", CodeOf(err), CodeInvalidArgument)
	}

	// Malformed input must not touch the store.
	entries, err := store.ScanPrefix("")
	if err != nil {
		t.Fatalf("ScanPrefix: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("store entries after rejected create: got %d, want 0", len(entries))
	}
}

func TestTaskListDeleteThenQueryNotFound(t *testing.T) {
	w, _ := newListWorker(t)
	req := Request{Owner: "a@x.com"}

	if _, err := w.Create(req, Content{Name: "groceries"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	target := Request{Owner: "a@x.com", List: "groceries"}
	if err := w.Delete(target); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	_, err := w.Query(target)
	if CodeOf(err) != CodeNotFound {
		t.Fatalf("code after delete: got %v, want %v", CodeOf(err), CodeNotFound)
	}
}

func TestTaskListDeleteAbsentIsNotFound(t *testing.T) {
	w, store := newListWorker(t)

	err := w.Delete(Request{Owner: "a@x.com", List: "never-created"})
	if CodeOf(err) != CodeNotFound {
		t.Fatalf("code: got %v, want %v", CodeOf(err), CodeNotFound)
	}

	entries, scanErr := store.ScanPrefix("")
	if scanErr != nil {
		t.Fatalf("ScanPrefix: %v", scanErr)
	}
	if len(entries) != 0 {
		t.Errorf("store entries: got %d, want 0", len(entries))
	}
}

func TestTaskListReviseRejectsRename(t *testing.T) {
	w, _ := newListWorker(t)
	req := Request{Owner: "a@x.com"}

	if _, err := w.Create(req, Content{Name: "groceries", Content: "original"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	target := Request{Owner: "a@x.com", List: "groceries"}
	err := w.Revise(target, Content{Name: "errands"})
	if CodeOf(err) != CodeInvalidArgument {
		t.Fatalf("code: got %v, want %v", CodeOf(err), CodeInvalidArgument)
	}

	// The stored record is unchanged.
	got, err := w.Query(target)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if got.Content != "original" {
		t.Errorf("content after rejected rename: got %q, want %q", got.Content, "original")
	}
}

func TestTaskListRevisePartialUpdate(t *testing.T) {
	w, _ := newListWorker(t)
	req := Request{Owner: "a@x.com"}

	if _, err := w.Create(req, Content{Name: "groceries", Content: "v1", Date: "2026-08-01"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	target := Request{Owner: "a@x.com", List: "groceries"}

	// Only content set: date stays.
	if err := w.Revise(target, Content{Content: "v2"}); err != nil {
		t.Fatalf("Revise content: %v", err)
	}
	got, err := w.Query(target)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if got.Content != "v2" || got.Date != "2026-08-01" {
		t.Errorf("after content revise: got %+v", got)
	}

	// Only date set: content stays.
	if err := w.Revise(target, Content{Date: "2026-08-30"}); err != nil {
		t.Fatalf("Revise date: %v", err)
	}
	got, err = w.Query(target)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if got.Content != "v2" || got.Date != "2026-08-30" {
		t.Errorf("after date revise: got %+v", got)
	}
}

func TestTaskListReviseAbsentIsNotFound(t *testing.T) {
	w, _ := newListWorker(t)

	err := w.Revise(Request{Owner: "a@x.com", List: "missing"}, Content{Content: "x"})
	if CodeOf(err) != CodeNotFound {
		t.Fatalf("code: got %v, want %v", CodeOf(err), CodeNotFound)
	}
}

func TestTaskListExists(t *testing.T) {
	w, _ := newListWorker(t)
	req := Request{Owner: "a@x.com"}

	ok, err := w.Exists(Request{Owner: "a@x.com", List: "groceries"})
	if err != nil {
		t.Fatalf("Exists on absent: %v", err)
	}
	if ok {
		t.Fatal("Exists on absent: got true, want false")
	}

	if _, err := w.Create(req, Content{Name: "groceries"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	ok, err = w.Exists(Request{Owner: "a@x.com", List: "groceries"})
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !ok {
		t.Fatal("Exists: got false, want true")
	}
}

func TestTaskListOwnersAreIsolated(t *testing.T) {
	w, _ := newListWorker(t)

	if _, err := w.Create(Request{Owner: "a@x.com"}, Content{Name: "groceries"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	names, err := w.GetAllTasklist(Request{Owner: "b@x.com"})
	if err != nil {
		t.Fatalf("GetAllTasklist: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("other owner's lists: got %v, want none", names)
	}

	_, err = w.Query(Request{Owner: "b@x.com", List: "groceries"})
	if CodeOf(err) != CodeNotFound {
		t.Fatalf("cross-owner query code: got %v, want %v", CodeOf(err), CodeNotFound)
	}
}

func TestTaskListKeysDoNotAliasAcrossSlashes(t *testing.T) {
	w, _ := newListWorker(t)

	// An owner containing a separator must not leak into another scope.
	if _, err := w.Create(Request{Owner: "a@x.com/evil"}, Content{Name: "x"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	names, err := w.GetAllTasklist(Request{Owner: "a@x.com"})
	if err != nil {
		t.Fatalf("GetAllTasklist: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("aliased lists: got %v, want none", names)
	}
}

func TestCodeOfClassifications(t *testing.T) {
	if got := CodeOf(nil); got != CodeSuccess {
		t.Errorf("nil: got %v, want %v", got, CodeSuccess)
	}
	if got := CodeOf(errors.New("disk on fire")); got != CodeStoreError {
		t.Errorf("plain error: got %v, want %v", got, CodeStoreError)
	}
	if got := CodeOf(notFound("x")); got != CodeNotFound {
		t.Errorf("notFound: got %v, want %v", got, CodeNotFound)
	}
}
