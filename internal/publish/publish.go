// Package publish announces computed routes on an MQTT broker.
package publish

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/safepath/safepath/schema"
)

const publishTimeout = 2 * time.Second

// RouteMessage is the payload published for each computed route.
type RouteMessage struct {
	RunID         string       `json:"run_id,omitempty"`
	Start         int64        `json:"start"`
	End           int64        `json:"end"`
	Path          []int64      `json:"path"`
	TotalWeight   float64      `json:"total_weight"`
	MinRouteScore float64      `json:"min_route_score"`
	GeodesicKm    float64      `json:"geodesic_km"`
	TravelMinutes float64      `json:"travel_minutes"`
	Coordinates   [][2]float64 `json:"coordinates"` // lon, lat
	Provider      string       `json:"provider,omitempty"`
	Timestamp     int64        `json:"timestamp"`
}

// NewRouteMessage builds the message of a route report.
func NewRouteMessage(report schema.RouteReport, now time.Time) RouteMessage {
	coords := make([][2]float64, len(report.Route))
	for i, s := range report.Route {
		coords[i] = [2]float64{s.Longitude, s.Latitude}
	}
	msg := RouteMessage{
		RunID:         report.RunID,
		Start:         report.Start,
		End:           report.End,
		Path:          report.Path.IDs,
		TotalWeight:   report.Path.TotalWeight,
		MinRouteScore: report.MinRouteScore,
		GeodesicKm:    report.GeodesicKm,
		TravelMinutes: report.TravelMinutes,
		Coordinates:   coords,
		Timestamp:     now.Unix(),
	}
	if report.Provider != nil {
		msg.Provider = report.Provider.Provider
	}
	return msg
}

// Publisher publishes route reports to MQTT.
type Publisher struct {
	client mqtt.Client
	prefix string
	qos    byte
	retain bool
}

// NewPublisher creates a publisher on an already connected client.
func NewPublisher(client mqtt.Client, prefix string) *Publisher {
	return &Publisher{
		client: client,
		prefix: prefix,
		qos:    1,
		retain: true, // late subscribers get the latest route
	}
}

// Connect opens a connection to the broker and waits for it.
func Connect(broker, clientID string, timeout time.Duration) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetConnectTimeout(timeout)
	opts.SetAutoReconnect(false)
	opts.SetCleanSession(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		return nil, fmt.Errorf("timed out connecting to MQTT broker %s", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connecting to MQTT broker %s: %w", broker, err)
	}
	return client, nil
}

// RouteTopic returns the topic of a start/end pair.
func (p *Publisher) RouteTopic(start, end int64) string {
	return fmt.Sprintf("%s/route/%d/%d", p.prefix, start, end)
}

// LatestTopic returns the topic that always carries the last route.
func (p *Publisher) LatestTopic() string {
	return p.prefix + "/route/latest"
}

// PublishRoute publishes the report to its pair topic and to the latest topic.
func (p *Publisher) PublishRoute(report schema.RouteReport) error {
	if p.client == nil || !p.client.IsConnected() {
		return fmt.Errorf("MQTT client not connected")
	}

	payload, err := json.Marshal(NewRouteMessage(report, time.Now()))
	if err != nil {
		return fmt.Errorf("marshaling route: %w", err)
	}

	for _, topic := range []string{p.RouteTopic(report.Start, report.End), p.LatestTopic()} {
		if err := p.publish(topic, payload); err != nil {
			return err
		}
	}
	return nil
}

func (p *Publisher) publish(topic string, payload []byte) error {
	token := p.client.Publish(topic, p.qos, p.retain, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publishing to %s: timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	return nil
}

// Close disconnects the client, giving in-flight messages a short grace period.
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
