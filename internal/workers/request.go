package workers

// Request carries the scoping keys of a single worker call. Owner is the
// verified identity string produced by the auth layer; List and Item narrow
// the scope for task-list and task operations respectively.
type Request struct {
	Owner string
	List  string
	Item  string
}

// requireOwner rejects requests without a verified identity before any
// store access happens.
func (r Request) requireOwner() error {
	if r.Owner == "" {
		return invalidArgument("owner key is required")
	}
	return nil
}

// requireList validates owner plus list key.
func (r Request) requireList() error {
	if err := r.requireOwner(); err != nil {
		return err
	}
	if r.List == "" {
		return invalidArgument("list key is required")
	}
	return nil
}

// requireItem validates owner, list and item keys.
func (r Request) requireItem() error {
	if err := r.requireList(); err != nil {
		return err
	}
	if r.Item == "" {
		return invalidArgument("item key is required")
	}
	return nil
}
