package ports

// WorkspaceLocator finds a thermosweep workspace root starting from an arbitrary directory.
type WorkspaceLocator interface {
	FindRoot(startDir string) (string, error)
}

type WorkspaceInitializer interface {
	Init(root string, force bool) error
}
