package discovery

import (
	"fmt"
	"net"
	"strconv"

	"github.com/hashicorp/consul/api"
	"go.uber.org/zap"
)

const (
	defaultHealthPath   = "/health"
	checkInterval       = "10s"
	checkTimeout        = "5s"
	deregisterAfter     = "30s"
	fallbackServiceHost = "localhost"
)

type ConsulClient struct {
	client *api.Client
	logger *zap.Logger
}

// ServiceConfig describes one instance to register. An empty Address is
// replaced by the host's outbound IP, an empty HealthPath by /health.
type ServiceConfig struct {
	Name       string
	ID         string
	Address    string
	Port       int
	HealthPath string
	Tags       []string
}

func NewConsulClient(host string, port int, logger *zap.Logger) (*ConsulClient, error) {
	cfg := api.DefaultConfig()
	cfg.Address = net.JoinHostPort(host, strconv.Itoa(port))

	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Consul client: %w", err)
	}
	if _, err := client.Agent().Self(); err != nil {
		return nil, fmt.Errorf("failed to connect to Consul at %s: %w", cfg.Address, err)
	}

	logger.Info("✅ Connected to Consul", zap.String("addr", cfg.Address))
	return &ConsulClient{client: client, logger: logger}, nil
}

func outboundIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}

// Registration builds the agent registration for cfg with an HTTP health check
func Registration(cfg ServiceConfig) *api.AgentServiceRegistration {
	address := cfg.Address
	if address == "" {
		address = outboundIP()
	}
	healthPath := cfg.HealthPath
	if healthPath == "" {
		healthPath = defaultHealthPath
	}

	return &api.AgentServiceRegistration{
		ID:      cfg.ID,
		Name:    cfg.Name,
		Address: address,
		Port:    cfg.Port,
		Tags:    cfg.Tags,
		Check: &api.AgentServiceCheck{
			HTTP:                           baseURL(address, cfg.Port) + healthPath,
			Interval:                       checkInterval,
			Timeout:                        checkTimeout,
			DeregisterCriticalServiceAfter: deregisterAfter,
		},
	}
}

func (c *ConsulClient) Register(cfg ServiceConfig) error {
	reg := Registration(cfg)
	if err := c.client.Agent().ServiceRegister(reg); err != nil {
		return fmt.Errorf("failed to register %s: %w", cfg.Name, err)
	}

	c.logger.Info("✅ Registered service",
		zap.String("name", reg.Name),
		zap.String("id", reg.ID),
		zap.String("health", reg.Check.HTTP),
	)
	return nil
}

func (c *ConsulClient) Deregister(serviceID string) error {
	if err := c.client.Agent().ServiceDeregister(serviceID); err != nil {
		return fmt.Errorf("failed to deregister %s: %w", serviceID, err)
	}

	c.logger.Info("👋 Deregistered service", zap.String("id", serviceID))
	return nil
}

// GetServiceURL returns the base URL of the first passing instance of serviceName
func (c *ConsulClient) GetServiceURL(serviceName string) (string, error) {
	entries, _, err := c.client.Health().Service(serviceName, "", true, nil)
	if err != nil {
		return "", fmt.Errorf("failed to query %s: %w", serviceName, err)
	}
	if len(entries) == 0 {
		return "", fmt.Errorf("no healthy instances of %s found", serviceName)
	}
	return serviceURL(entries[0].Service), nil
}

func serviceURL(svc *api.AgentService) string {
	address := svc.Address
	if address == "" {
		address = fallbackServiceHost
	}
	return baseURL(address, svc.Port)
}

func baseURL(host string, port int) string {
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port))
}
