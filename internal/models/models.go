// Package models defines the data structures shared across the agent. It has
// no imports from other internal packages, making it the foundation of the
// dependency graph: store, build, deploy, and api all import from here.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Build represents one submitted source archive and its image-production
// attempt. It maps 1:1 to the builds table.
type Build struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	Status    BuildStatus `json:"status" db:"status"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}

// Deployment is a single attempt to run a built image as a container bound
// to an application. ContainerID, ContainerName, and Address are pointers
// because they are unset until the container has actually started.
type Deployment struct {
	ID            uuid.UUID    `json:"id" db:"id"`
	BuildID       uuid.UUID    `json:"build_id" db:"build_id"`
	App           string       `json:"app" db:"app"`
	Image         string       `json:"image" db:"image"`
	Status        DeployStatus `json:"status" db:"status"`
	ContainerID   *string      `json:"container_id,omitempty" db:"container_id"`
	ContainerName *string      `json:"container_name,omitempty" db:"container_name"`
	Address       *string      `json:"address,omitempty" db:"address"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" db:"updated_at"`
}

// App is a logical grouping of successive deployments identified by a
// user-chosen name. ActiveDeploymentID is nil until the first deployment
// for this app reaches Running.
type App struct {
	Name               string     `json:"name" db:"name"`
	ActiveDeploymentID *uuid.UUID `json:"active_deployment_id,omitempty" db:"active_deployment_id"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
}

// BuildJob is the immutable message handed from the request surface to the
// Build Worker across the build queue.
type BuildJob struct {
	BuildID uuid.UUID
	Deploy  bool
}

// DeployJob is the immutable message handed from the Build Worker to the
// Deploy Worker across the deploy queue. PreviousActiveDeployment captures
// the app's active deployment at enqueue time, not at processing time.
type DeployJob struct {
	DeployID                 uuid.UUID
	BuildID                  uuid.UUID
	App                      string
	ImageReference           string
	AppPort                  int
	PreviousActiveDeployment *uuid.UUID
}
