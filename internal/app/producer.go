package app

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/squeeze_computer/internal/config"
	"github.com/relabs-tech/squeeze_computer/squeeze"
)

// rawPayload is the JSON shape published on the raw topic: the untouched
// measurement frame for consumers that run their own processing.
type rawPayload struct {
	Dim    int    `json:"dim"`
	Values []int  `json:"values,omitempty"`
	Time   string `json:"time"`
}

// openFeed opens the configured sensor byte source. The serial feed is the
// shield's Arduino; the mock feed synthesizes one for development.
func openFeed(cfg *config.Config) (io.ReadCloser, error) {
	if cfg.FeedSource == "mock" {
		log.Println("using mock sensor feed")
		return io.NopCloser(squeeze.NewMockFeed()), nil
	}

	// NOTE: adjust SERIAL_PORT to match your setup: /dev/ttyACM0, /dev/ttyUSB0, etc.
	serialOpts := serial.OpenOptions{
		PortName:              cfg.SerialPort,
		BaudRate:              uint(cfg.BaudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", serialOpts.PortName, err)
	}
	log.Printf("sensor serial port opened on %s at %d baud", serialOpts.PortName, serialOpts.BaudRate)
	return port, nil
}

// RunProducer reads the sensor byte stream, runs the squeeze engine and
// publishes the derived features to MQTT once per processing cycle.
func RunProducer() error {
	cfg := config.Get()

	// ---- 1) Connect to MQTT broker ----
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProducer)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("squeeze producer connected to MQTT broker at %s", cfg.MQTTBroker)

	// ---- 2) Open the sensor feed ----
	feed, err := openFeed(cfg)
	if err != nil {
		return err
	}
	defer feed.Close()

	eng := squeeze.New()

	// ---- 3) Drain the feed as bytes arrive ----
	// The reader goroutine only accumulates; the cycle ticker below consumes
	// the accumulation, so the engine ticks at a steady rate no matter how
	// the bytes clump on the wire.
	var mu sync.Mutex
	var pending []byte
	readErr := make(chan error, 1)

	go func() {
		buf := make([]byte, 256)
		for {
			n, err := feed.Read(buf)
			if n > 0 {
				mu.Lock()
				pending = append(pending, buf[:n]...)
				mu.Unlock()
			}
			if err != nil {
				readErr <- err
				return
			}
		}
	}()

	// ---- 4) Cycle: tick the engine, publish the features ----
	ticker := time.NewTicker(time.Duration(cfg.PublishInterval) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case err := <-readErr:
			log.Printf("sensor read error: %v", err)
			return err

		case t := <-ticker.C:
			mu.Lock()
			chunk := pending
			pending = nil
			mu.Unlock()

			eng.Tick(chunk)
			snap := eng.Snapshot()

			if payload, err := json.Marshal(snap); err != nil {
				log.Printf("features marshal error: %v", err)
			} else if token := client.Publish(cfg.TopicFeatures, 0, true, payload); token.Wait() && token.Error() != nil {
				log.Printf("MQTT publish error (features): %v", token.Error())
				continue
			}

			raw := rawPayload{Dim: snap.Dim, Values: snap.Raw, Time: snap.Time}
			if payload, err := json.Marshal(raw); err != nil {
				log.Printf("raw marshal error: %v", err)
			} else if token := client.Publish(cfg.TopicRaw, 0, true, payload); token.Wait() && token.Error() != nil {
				log.Printf("MQTT publish error (raw): %v", token.Error())
				continue
			}

			// per-electrode features only exist on the full shield layout
			if len(snap.Electrodes) > 0 {
				if payload, err := json.Marshal(snap.Electrodes); err != nil {
					log.Printf("electrodes marshal error: %v", err)
				} else if token := client.Publish(cfg.TopicElectrodes, 0, true, payload); token.Wait() && token.Error() != nil {
					log.Printf("MQTT publish error (electrodes): %v", token.Error())
				}
			}

			log.Printf("%s tick: dim=%d mag=%.3f avg=%.3f norm=%.3f deriv=%+.3f max=%.3f",
				t.Format(time.RFC3339),
				snap.Dim, snap.Magnitude, snap.Average, snap.Norm, snap.Derivative, snap.Max,
			)
		}
	}
}
