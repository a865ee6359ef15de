package events

import (
	"encoding/json"
	"fmt"

	"fleet-tracker/internal/config"
	"fleet-tracker/internal/models"
	"fleet-tracker/internal/utils"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Publisher receives one event per device per tick of the live loop.
type Publisher interface {
	PublishLocation(location models.Location) error
	Close()
}

// LogPublisher writes tick events to the application log.
type LogPublisher struct {
	logger *utils.Logger
}

// NewLogPublisher creates a log-backed publisher.
func NewLogPublisher(logger *utils.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) PublishLocation(location models.Location) error {
	p.logger.Infof("Updated location for device %d: (%f, %f) status=%s",
		location.DeviceID, location.Latitude, location.Longitude, location.Status)
	return nil
}

func (p *LogPublisher) Close() {}

// MQTTPublisher publishes tick events as JSON on a per-device topic.
type MQTTPublisher struct {
	client      mqtt.Client
	topicPrefix string
	logger      *utils.Logger
}

// NewMQTTPublisher connects to the configured broker and returns a
// publisher over it.
func NewMQTTPublisher(cfg *config.Config, logger *utils.Logger) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("MQTT connect failed: %w", token.Error())
	}

	return &MQTTPublisher{
		client:      client,
		topicPrefix: cfg.MQTTTopicPrefix,
		logger:      logger,
	}, nil
}

func (p *MQTTPublisher) PublishLocation(location models.Location) error {
	if !p.client.IsConnected() {
		return fmt.Errorf("MQTT client is not connected")
	}

	payload, err := json.Marshal(location)
	if err != nil {
		return fmt.Errorf("failed to marshal location message: %v", err)
	}

	topic := fmt.Sprintf("%s/%d/location", p.topicPrefix, location.DeviceID)
	token := p.client.Publish(topic, 0, false, payload)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT publish failed for device %d: %v", location.DeviceID, token.Error())
	}
	return nil
}

func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
