// Package discovery advertises the presenter on the local network over
// mDNS so phones and tablets can find the remote page.
package discovery

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the DNS-SD service type.
	ServiceType = "_gesture-presenter._tcp"
	// ServiceDomain is the mDNS domain.
	ServiceDomain = "local."
)

// Service registers the presenter's HTTP port with zeroconf.
type Service struct {
	mu       sync.Mutex
	server   *zeroconf.Server
	instance string
	port     int
	text     []string
}

// NewService creates a Service for port. The instance name defaults to
// "<hostname> presenter".
func NewService(port int, instance string) *Service {
	if instance == "" {
		hostname, err := os.Hostname()
		if err != nil || hostname == "" {
			hostname = "gesture"
		}
		instance = hostname + " presenter"
	}

	return &Service{
		instance: instance,
		port:     port,
		text:     []string{"version=1", "path=/"},
	}
}

// Start registers the service. Calling Start on a running Service is a no-op.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return nil
	}

	server, err := zeroconf.Register(s.instance, ServiceType, ServiceDomain, s.port, s.text, nil)
	if err != nil {
		return fmt.Errorf("register %s: %w", ServiceType, err)
	}
	s.server = server

	log.Printf("Advertising %q as %s on port %d", s.instance, ServiceType, s.port)
	return nil
}

// Stop withdraws the registration. Calling Stop on a stopped Service is a no-op.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return
	}
	s.server.Shutdown()
	s.server = nil
}

// Running reports whether the service is registered.
func (s *Service) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.server != nil
}

// Instance returns the advertised instance name.
func (s *Service) Instance() string {
	return s.instance
}

// Port returns the advertised port.
func (s *Service) Port() int {
	return s.port
}
