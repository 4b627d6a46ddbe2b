package file

import "time"

// Object describes a stored blob addressed by bucket and key.
type Object struct {
	Bucket       string    `json:"bucket"`
	Key          string    `json:"key"`
	SizeBytes    int64     `json:"size_bytes"`
	ContentType  string    `json:"content_type,omitempty"`
	ETag         string    `json:"etag,omitempty"`
	LastModified time.Time `json:"last_modified,omitzero"`
}

// Keys returns the object keys in order.
func Keys(objects []Object) []string {
	keys := make([]string, 0, len(objects))
	for _, o := range objects {
		keys = append(keys, o.Key)
	}
	return keys
}
