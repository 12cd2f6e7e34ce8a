package core

import (
	"time"

	"github.com/safepath/safepath/internal/contract"
	"github.com/safepath/safepath/internal/publish"
	"github.com/safepath/safepath/schema"
)

const mqttConnectTimeout = 5 * time.Second

// connectMQTT is replaced in tests.
var connectMQTT = publish.Connect

// publishRoute announces the route when a broker is configured. Failures are logged.
func publishRoute(cfg *contract.Config, report schema.RouteReport) {
	if cfg.MQTTBroker == "" {
		return
	}
	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientID, mqttConnectTimeout)
	if err != nil {
		contract.LogWarn("MQTT connection failed", err)
		return
	}
	p := publish.NewPublisher(client, cfg.MQTTPrefix)
	defer p.Close()

	if err := p.PublishRoute(report); err != nil {
		contract.LogWarn("Failed to publish route", err)
	}
}
