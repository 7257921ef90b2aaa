// Package statemachine validates status transitions for orders, payments and
// deliveries against explicit transition tables, so that no enum value can
// follow any other unchecked.
package statemachine

import (
	"sort"
	"strings"

	"pantry-market/models"
	"pantry-market/utils"
)

// Machine is a table of allowed transitions between string states.
type Machine struct {
	name  string
	edges map[string]map[string]bool
}

// New builds a machine from a from-state → allowed-next-states table.
func New(name string, table map[string][]string) *Machine {
	edges := make(map[string]map[string]bool, len(table))
	for from, tos := range table {
		next := make(map[string]bool, len(tos))
		for _, to := range tos {
			next[to] = true
		}
		edges[from] = next
	}
	return &Machine{name: name, edges: edges}
}

// Can returns nil when from → to is an allowed transition, or a validation
// error naming the allowed next states otherwise.
func (m *Machine) Can(from, to string) error {
	if m.edges[from][to] {
		return nil
	}
	nexts := m.NextStates(from)
	if len(nexts) == 0 {
		return utils.Validationf("%s status %q is terminal", m.name, from)
	}
	return utils.Validationf("%s status cannot change from %q to %q (allowed: %s)",
		m.name, from, to, strings.Join(nexts, ", "))
}

// NextStates returns the allowed next states from a given state, sorted.
func (m *Machine) NextStates(from string) []string {
	var nexts []string
	for to := range m.edges[from] {
		nexts = append(nexts, to)
	}
	sort.Strings(nexts)
	return nexts
}

// Orders: pending → confirmed → processing → out_for_delivery → delivered,
// with cancellation available until a terminal state is reached.
var Orders = New("order", map[string][]string{
	string(models.OrderPending):        {string(models.OrderConfirmed), string(models.OrderCancelled)},
	string(models.OrderConfirmed):      {string(models.OrderProcessing), string(models.OrderCancelled)},
	string(models.OrderProcessing):     {string(models.OrderOutForDelivery), string(models.OrderCancelled)},
	string(models.OrderOutForDelivery): {string(models.OrderDelivered), string(models.OrderCancelled)},
})

// Deliveries: pending → assigned → in_progress → completed, with cancellation
// available until a terminal state is reached.
var Deliveries = New("delivery", map[string][]string{
	string(models.DeliveryPending):    {string(models.DeliveryAssigned), string(models.DeliveryCancelled)},
	string(models.DeliveryAssigned):   {string(models.DeliveryInProgress), string(models.DeliveryCancelled)},
	string(models.DeliveryInProgress): {string(models.DeliveryCompleted), string(models.DeliveryCancelled)},
})

// Payments: pending resolves exactly once, to completed or failed.
var Payments = New("payment", map[string][]string{
	string(models.PaymentPending): {string(models.PaymentCompleted), string(models.PaymentFailed)},
})
