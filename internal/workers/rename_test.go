package workers

import (
	"fmt"
	"sync"
	"testing"

	"github.com/taskfolk/tasklistd/internal/kv"
)

func TestSuffixed(t *testing.T) {
	if got := suffixed("groceries", 1); got != "groceries" {
		t.Errorf("n=1: got %q", got)
	}
	if got := suffixed("groceries", 2); got != "groceries-2" {
		t.Errorf("n=2: got %q", got)
	}
	if got := suffixed("groceries", 10); got != "groceries-10" {
		t.Errorf("n=10: got %q", got)
	}
}

func TestCreateUniqueExhaustsProbeBudget(t *testing.T) {
	w, _ := newListWorker(t)
	req := Request{Owner: "a@x.com"}

	for i := 0; i < maxCreateProbes; i++ {
		if _, err := w.Create(req, Content{Name: "busy"}); err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
	}

	_, err := w.Create(req, Content{Name: "busy"})
	if CodeOf(err) != CodeConflict {
		t.Fatalf("code after budget: got %v, want %v", CodeOf(err), CodeConflict)
	}
}

func TestCreateUniqueConcurrentRace(t *testing.T) {
	store := kv.NewMemStore()
	w := NewTaskListWorker(store)
	req := Request{Owner: "a@x.com"}

	const n = 16
	assigned := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name, err := w.Create(req, Content{Name: "shared"})
			if err != nil {
				t.Errorf("Create %d: %v", i, err)
				return
			}
			assigned[i] = name
		}(i)
	}
	wg.Wait()

	// Every winner got a distinct key; nothing was overwritten.
	seen := make(map[string]int)
	for i, name := range assigned {
		if name == "" {
			continue
		}
		if prev, dup := seen[name]; dup {
			t.Fatalf("goroutines %d and %d both won key %q", prev, i, name)
		}
		seen[name] = i
	}

	names, err := w.GetAllTasklist(req)
	if err != nil {
		t.Fatalf("GetAllTasklist: %v", err)
	}
	if len(names) != len(seen) {
		t.Errorf("stored lists: got %d, want %d", len(names), len(seen))
	}
}

func TestNameFromKey(t *testing.T) {
	key := tasklistKey("a@x.com", "with/slash")
	name, ok := nameFromKey(key, tasklistPrefix("a@x.com"))
	if !ok || name != "with/slash" {
		t.Fatalf("got %q, %v", name, ok)
	}

	if _, ok := nameFromKey("t/other/prefix", tasklistPrefix("a@x.com")); ok {
		t.Fatal("foreign key matched prefix")
	}
}

func ExampleTaskListWorker_Create() {
	store := kv.NewMemStore()
	w := NewTaskListWorker(store)
	req := Request{Owner: "a@x.com"}

	first, _ := w.Create(req, Content{Name: "groceries"})
	second, _ := w.Create(req, Content{Name: "groceries"})
	fmt.Println(first, second)
	// Output: groceries groceries-2
}
