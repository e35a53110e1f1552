package workers

import (
	"errors"
	"fmt"

	"github.com/taskfolk/tasklistd/internal/kv"
)

// maxCreateProbes bounds the duplicate-name probe loop. Exhausting it
// yields Conflict rather than overwriting an existing record.
const maxCreateProbes = 100

// suffixed returns the nth candidate for a base name: the name itself,
// then "name-2", "name-3", and so on.
func suffixed(name string, n int) string {
	if n <= 1 {
		return name
	}
	return fmt.Sprintf("%s-%d", name, n)
}

// createUnique resolves a create-time key collision deterministically. It
// probes name, name-2, name-3, ... with conditional writes until one is
// free, then returns the name actually assigned. The stored record carries
// the assigned name, so a later Query round-trips it.
//
// Both workers call through here; it is the single source of truth for
// what a duplicate create does. The conditional write makes each probe a
// critical section: two racing creates cannot both win the same key.
func createUnique(store kv.Store, keyFor func(name string) string, content Content) (string, error) {
	if content.Name == "" {
		return "", invalidArgument("name is required")
	}

	for n := 1; n <= maxCreateProbes; n++ {
		assigned := suffixed(content.Name, n)
		record := content
		record.Name = assigned

		value, err := encodeRecord(record)
		if err != nil {
			return "", storeError(err, "serialize %q", assigned)
		}

		err = store.PutIfAbsent(keyFor(assigned), value)
		if errors.Is(err, kv.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return "", storeError(err, "write %q", assigned)
		}
		return assigned, nil
	}

	return "", conflict("no free key for %q after %d probes", content.Name, maxCreateProbes)
}
