package broker

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/tableside/poker-services/internal/comm"
)

type Broker struct {
	Conn           *nats.Conn
	GetConnection  func(string) (*websocket.Conn, bool)
	GetGameSockets func(string) ([]string, bool)
}

func NewBroker(conn *nats.Conn, fncGetConnection func(string) (*websocket.Conn, bool), fncGetGameSockets func(string) ([]string, bool)) *Broker {
	return &Broker{
		Conn:           conn,
		GetConnection:  fncGetConnection,
		GetGameSockets: fncGetGameSockets,
	}
}

// SubscribeResponses consumes command responses from the ledger service,
// each addressed to one socket.
func (b *Broker) SubscribeResponses(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleResponses)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// SubscribeNotices consumes change notices and fans them out to every
// socket watching the affected game.
func (b *Broker) SubscribeNotices(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleNotices)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// publish message to the ledger service
func (b *Broker) Publish(topic string, payload []byte) error {
	err := b.Conn.Publish(topic, payload)
	if err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
		return err
	}

	return nil
}

// handleResponses receives a response from the ledger service and sends
// it to the socket that issued the command.
func (b *Broker) handleResponses(msgNats *nats.Msg) {
	message := &comm.WSMessage{}
	err := json.Unmarshal(msgNats.Data, &message)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	b.sendMessage(message)
}

// handleNotices broadcasts a ledger change to the game's watchers.
func (b *Broker) handleNotices(msgNats *nats.Msg) {
	message := &comm.WSMessage{}
	if err := json.Unmarshal(msgNats.Data, &message); err != nil {
		log.Errorf("Error %s", err)
		return
	}

	if message.Type != "ledger-changed" {
		log.Errorf("Unknown notice type %s", message.Type)
		return
	}

	notice := &comm.ChangeNotice{}
	if err := json.Unmarshal(message.Data, &notice); err != nil {
		log.Errorf("Error decoding change notice: %s", err)
		return
	}

	sockets, ok := b.GetGameSockets(notice.GameID)
	if !ok {
		return // nobody watching this game here
	}

	for _, socketId := range sockets {
		if conn, found := b.GetConnection(socketId); found {
			if err := conn.WriteJSON(message); err != nil {
				log.Println(err)
			}
		}
	}
}

// send socket message to the device
func (b *Broker) sendMessage(m *comm.WSMessage) {
	socketId := m.SocketId
	if conn, ok := b.GetConnection(socketId); ok {
		if err := conn.WriteJSON(m); err != nil {
			log.Println(err)
		}
	}
}
