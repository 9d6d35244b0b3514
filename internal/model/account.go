package model

import "time"

// Kind is the role an identity holds in the registry.
type Kind string

const (
	KindNone   Kind = "not-registered"
	KindParent Kind = "parent"
	KindChild  Kind = "child"
)

type Account struct {
	Address      string    `json:"address"`
	Kind         Kind      `json:"kind"`
	Name         string    `json:"name"`
	Parent       string    `json:"parent,omitempty"`
	EnrollmentID int64     `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Profile struct {
	Kind Kind   `json:"kind"`
	Name string `json:"name"`
}
