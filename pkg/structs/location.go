package structs

import (
	"path"
)

// Location names a blob in a given container (bucket).
type Location struct {
	Container string `json:"container"`
	Key       string `json:"key"`
}

func (l Location) String() string {
	return path.Join(l.Container, l.Key)
}
