package notification

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_repository.go -package=mocks . SSEHub

// SSEHub fans announcement events out to connected streams.
type SSEHub interface {
	Register(client *SSEClient)
	Unregister(clientID string)
	GetClientCount() int
	BroadcastToAll(message *SSEMessage)
	BroadcastToChannel(channel string, message *SSEMessage)
	SendToClient(clientID string, message *SSEMessage) error
}
