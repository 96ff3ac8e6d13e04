package routing_test

import (
	"testing"

	"github.com/orbitcrm/orbitcrm/internal/tenant/routing"
	"github.com/stretchr/testify/assert"
)

func TestExtractSlug(t *testing.T) {
	tests := []struct {
		name string
		host string
		base string
		want string
	}{
		{"subdomain", "acme.orbitcrm.test", "orbitcrm.test", "acme"},
		{"subdomain with port", "acme.orbitcrm.test:8080", "orbitcrm.test", "acme"},
		{"uppercase host", "ACME.OrbitCRM.test", "orbitcrm.test", "acme"},
		{"bare base domain", "orbitcrm.test", "orbitcrm.test", ""},
		{"base domain with port", "orbitcrm.test:8080", "orbitcrm.test", ""},
		{"unrelated host", "example.com", "orbitcrm.test", ""},
		{"suffix but not label boundary", "notorbitcrm.test", "orbitcrm.test", ""},
		{"deep prefix takes nearest label", "www.acme.orbitcrm.test", "orbitcrm.test", "acme"},
		{"trailing dot", "acme.orbitcrm.test.", "orbitcrm.test", "acme"},
		{"empty host", "", "orbitcrm.test", ""},
		{"no base configured", "acme.orbitcrm.test", "", ""},
		{"localhost", "localhost:8080", "localhost", ""},
		{"localhost subdomain", "acme.localhost", "localhost", ""},
		{"loopback ipv4", "127.0.0.1:8080", "0.0.1", ""},
		{"loopback ipv6", "[::1]:8080", "orbitcrm.test", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, routing.ExtractSlug(tt.host, tt.base))
		})
	}
}
