package driving

// PathValidator decides whether a path is safe to copy from or into.
type PathValidator interface {
	// Validate returns the normalised absolute path, or a
	// *domain.PathRejectedError wrapping domain.ErrPathRejected.
	Validate(path string) (string, error)
}
