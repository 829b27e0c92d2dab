package ports

// ToolLocator resolves external tool binaries.
type ToolLocator interface {
	LookPath(name string) (string, error)
}
