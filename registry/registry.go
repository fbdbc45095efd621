// Package registry announces the RBAC gRPC endpoint to a service catalog so
// that other panel services can find the authorization check.
package registry

import (
	consulapi "github.com/hashicorp/consul/api"
)

// Instance is one running endpoint of a service.
type Instance struct {
	// ID must be unique per process, e.g. name + host + port.
	ID      string
	Name    string
	Address string
	Port    int
	Tags    []string
	Check   *consulapi.AgentServiceCheck
}

// ServiceRegistry registers and deregisters service instances.
type ServiceRegistry interface {
	Register(inst Instance) error
	Deregister(id string) error
}
