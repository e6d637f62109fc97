package routes

import "sort"

// Table maps service names to backend ports. A Table is never mutated after
// construction and may be shared freely between goroutines.
type Table struct {
	ports map[string]int
}

// Default returns the built-in route table.
func Default() *Table {
	return New(map[string]int{
		"hasura-cache": 80,
		"ugc-gateway":  10000,
	})
}

// New copies entries into a new Table.
func New(entries map[string]int) *Table {
	ports := make(map[string]int, len(entries))
	for name, port := range entries {
		ports[name] = port
	}

	return &Table{ports: ports}
}

// Lookup returns the port for service. Matching is exact and case-sensitive;
// ok is false when the service is not routed.
func (t *Table) Lookup(service string) (port int, ok bool) {
	port, ok = t.ports[service]
	return port, ok
}

// Services returns the routed service names in sorted order.
func (t *Table) Services() []string {
	names := make([]string, 0, len(t.ports))
	for name := range t.ports {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
