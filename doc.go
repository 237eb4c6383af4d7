// Ordertrack is the transactional core of an order/payment tracking record.
//
// Orders are event sourced: current state is never stored directly but is
// derived by replaying an ordered, immutable log of domain events.
// The components/esource package holds the generic replay engine and the
// payload upcasting pipeline, eventstore holds the append-only log
// implementations and domain/order holds the order aggregate itself.
package ordertrack
