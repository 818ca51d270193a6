package structs

import (
	"strings"
)

// Status of an artifact. The pipeline only ever writes ACTIVE; later states are owned
// by whatever manages artifacts downstream.
type Status string

const (
	ACTIVE   Status = "active"
	RECYCLED Status = "recycled"
	DELETED  Status = "deleted"
)

func ToStatus(s string) Status {
	switch strings.ToLower(s) {
	case "active":
		return ACTIVE
	case "recycled":
		return RECYCLED
	case "deleted":
		return DELETED
	default:
		return ""
	}
}
