package ports

// Repository persists the ordered list of tracked URLs.
type Repository interface {
	// List returns every tracked URL in file order.
	List() ([]string, error)
	// Add appends a URL to the list.
	Add(url string) error
	// Remove deletes every URL containing the pattern and returns the
	// removed URLs.
	Remove(pattern string) ([]string, error)
}
