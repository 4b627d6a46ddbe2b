package bucket

import "time"

// Bucket is a top-level container in the blob store.
type Bucket struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Names returns the bucket names in order.
func Names(buckets []Bucket) []string {
	names := make([]string, 0, len(buckets))
	for _, b := range buckets {
		names = append(names, b.Name)
	}
	return names
}
