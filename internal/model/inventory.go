package model

// Inventory lists the regular files of an extracted bundle.
type Inventory struct {
	// Files is sorted by path.
	Files []FileEntry `json:"files"`

	// TotalBytes is the sum of all file sizes.
	TotalBytes int64 `json:"total_bytes"`
}
