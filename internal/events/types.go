package events

// Event enumerates high-level topics inside the gateway.
type Event string

const (
	EventOrderSubmitted       Event = "order.submitted"
	EventOrderAccepted        Event = "order.accepted"
	EventOrderRejected        Event = "order.rejected"
	EventOrderFilled          Event = "order.filled"
	EventOrderPartiallyFilled Event = "order.partially_filled"
	EventOrderCanceled        Event = "order.canceled"
	EventGatewayDegraded      Event = "gateway.degraded"
)
