package scada

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Fleet telemetry arrives on windfarm/<farm-id>/telemetry.
const telemetryTopic = "windfarm/+/telemetry"

type OnTelemetry func(windFarmID int64, t Telemetry)

type concurrentTimer struct {
	at time.Time
	mu sync.RWMutex
}

func (t *concurrentTimer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.at = time.Now()
}

func (t *concurrentTimer) Elapsed() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return time.Since(t.at)
}

// Scada subscribes to fleet telemetry over MQTT and keeps the latest state
// per farm in memory.
type Scada struct {
	mqttClient      mqtt.Client
	logger          *slog.Logger
	data            *InMemData
	lastMessageTime concurrentTimer
	stopMonitorCh   chan struct{}
	OnTelemetry     OnTelemetry
}

func New(broker string, port int16, username string, password string) *Scada {
	logger := slog.Default().With("module", "scada")
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", broker, port))
	opts.SetClientID("windfarm")
	opts.SetUsername(username)
	opts.SetPassword(password)
	opts.SetAutoReconnect(true)
	opts.OnConnect = func(client mqtt.Client) {
		logger.Info("scada MQTT connected")
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		logger.Warn("scada MQTT connection lost", slog.Any("error", err))
	}

	mqttLog := slog.Default().With("module", "mqtt")
	mqtt.CRITICAL = newMqttLogger(mqttLog, slog.LevelError)
	mqtt.ERROR = newMqttLogger(mqttLog, slog.LevelError)
	mqtt.WARN = newMqttLogger(mqttLog, slog.LevelWarn)

	return &Scada{
		mqttClient: mqtt.NewClient(opts),
		logger:     logger,
		data:       NewInMemData(),
	}
}

func (s *Scada) Data() *InMemData {
	return s.data
}

func (s *Scada) Connect() error {
	s.logger.Debug("connecting scada MQTT client")

	if token := s.mqttClient.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}

	s.inactivityWatchdog()

	token := s.mqttClient.Subscribe(telemetryTopic, 0, func(client mqtt.Client, msg mqtt.Message) {
		s.lastMessageTime.Reset()

		windFarmID, err := farmIDFromTopic(msg.Topic())
		if err != nil {
			s.logger.Warn("telemetry on unparsable topic",
				slog.String("topic", msg.Topic()),
				slog.Any("error", err))
			return
		}

		var t Telemetry
		if err := json.Unmarshal(msg.Payload(), &t); err != nil {
			s.logger.Error("error when reading telemetry message",
				slog.Int64("windFarmId", windFarmID),
				slog.Any("error", err))
			return
		}

		s.data.Set(windFarmID, t)
		if s.OnTelemetry != nil {
			s.OnTelemetry(windFarmID, t)
		}
	})

	if token.Wait() && token.Error() != nil {
		return token.Error()
	}

	return nil
}

func (s *Scada) Disconnect() {
	s.logger.Info("disconnecting scada mqtt client")
	if s.stopMonitorCh != nil {
		close(s.stopMonitorCh)
		s.stopMonitorCh = nil
	}

	token := s.mqttClient.Unsubscribe(telemetryTopic)
	token.WaitTimeout(1 * time.Second)
	if token.Error() != nil {
		s.logger.Error("error unsubscribing from telemetry", slog.Any("error", token.Error()))
	}

	s.mqttClient.Disconnect(250)
}

func farmIDFromTopic(topic string) (int64, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 {
		return 0, fmt.Errorf("unexpected topic shape %q", topic)
	}
	return strconv.ParseInt(parts[1], 10, 64)
}

func (s *Scada) inactivityWatchdog() {
	trafficOk := true
	maxElapsed := 5 * time.Minute
	s.lastMessageTime.Reset()
	s.stopMonitorCh = make(chan struct{})

	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if s.lastMessageTime.Elapsed() >= maxElapsed {
					if trafficOk {
						s.logger.Warn(fmt.Sprintf("no incoming telemetry for the last %.0f minutes", maxElapsed.Minutes()))
						trafficOk = false
					}
				} else if !trafficOk {
					s.logger.Info("telemetry traffic is restored")
					trafficOk = true
				}

			case <-s.stopMonitorCh:
				s.logger.Debug("stopping scada monitor routine")
				return
			}
		}
	}()
}
