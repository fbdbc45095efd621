package registry

import (
	"fmt"

	"panel-rbac/config"

	consulapi "github.com/hashicorp/consul/api"
	"go.uber.org/zap"
)

type consulRegistry struct {
	client *consulapi.Client
	logger *zap.SugaredLogger
}

// Ensure consulRegistry implements ServiceRegistry
var _ ServiceRegistry = (*consulRegistry)(nil)

// NewConsulRegistry connects to the Consul agent at cfg.Address.
func NewConsulRegistry(cfg config.ConsulConfig, logger *zap.SugaredLogger) (ServiceRegistry, error) {
	consulConfig := consulapi.DefaultConfig()
	consulConfig.Address = cfg.Address

	client, err := consulapi.NewClient(consulConfig)
	if err != nil {
		logger.Errorw("Failed to create Consul client", "address", consulConfig.Address, "error", err)
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}

	// NewClient does not dial; ask the agent for its node name to fail fast
	if _, err := client.Agent().NodeName(); err != nil {
		logger.Errorw("Failed to connect to Consul agent", "address", consulConfig.Address, "error", err)
		return nil, fmt.Errorf("cannot connect to consul agent at %s: %w", consulConfig.Address, err)
	}
	logger.Infow("Connected to Consul agent", "address", consulConfig.Address)

	return &consulRegistry{
		client: client,
		logger: logger.Named("consul_registry"), // Scope every registry log line
	}, nil
}

// Register registers inst together with its health check.
func (r *consulRegistry) Register(inst Instance) error {
	reg := &consulapi.AgentServiceRegistration{
		ID:      inst.ID,                               // Unique per process, e.g. "panel-rbac-grpc-host-50051"
		Name:    inst.Name,                             // Service name clients resolve
		Tags:    inst.Tags,                             // Optional tags
		Port:    inst.Port,                             // gRPC port
		Address: inst.Address,                          // Advertised host, not the bind address
		Check:   inst.Check,                            // Health check configuration
		Meta:    map[string]string{"protocol": "grpc"}, // Only the gRPC endpoint is registered
	}

	if err := r.client.Agent().ServiceRegister(reg); err != nil {
		r.logger.Errorw("Failed to register service with Consul", "service_id", inst.ID, "service_name", inst.Name, "error", err)
		return fmt.Errorf("failed to register service '%s': %w", inst.Name, err)
	}
	r.logger.Infow("Registered service with Consul", "service_id", inst.ID, "service_name", inst.Name, "address", inst.Address, "port", inst.Port)
	return nil
}

// Deregister removes a service instance from Consul.
func (r *consulRegistry) Deregister(id string) error {
	if err := r.client.Agent().ServiceDeregister(id); err != nil {
		r.logger.Errorw("Failed to deregister service from Consul", "service_id", id, "error", err)
		return fmt.Errorf("failed to deregister service '%s': %w", id, err)
	}
	r.logger.Infow("Deregistered service from Consul", "service_id", id)
	return nil
}

// GRPCCheck builds a Consul check against the standard gRPC health service.
// grpcTarget is the address:port Consul dials; interval and timeout use
// Consul duration strings such as "10s".
func GRPCCheck(serviceID, grpcTarget, interval, timeout string) *consulapi.AgentServiceCheck {
	return &consulapi.AgentServiceCheck{
		CheckID:                        fmt.Sprintf("check_%s_grpc", serviceID),
		Name:                           fmt.Sprintf("gRPC Check for %s", serviceID),
		GRPC:                           grpcTarget,
		Interval:                       interval,
		Timeout:                        timeout,
		DeregisterCriticalServiceAfter: "1m", // Drop instances that stay critical, e.g. after a crash
	}
}
