package index

// PostIndex defines the interface for post indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type PostIndex interface {
	UpsertPost(p PostRow, body, html string) error
	DeletePost(path string) error
	CachedHTML(path, checksum string) (string, bool, error)
	GetPost(name string) (*PostRow, error)
	ListPosts(limit, offset int, tag string) ([]PostRow, int, error)
	PostsByTag(tag string) ([]string, error)
	Tags() ([]TagCount, error)
	Search(query string, limit int) ([]SearchResult, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies PostIndex at compile time.
var _ PostIndex = (*DB)(nil)
