package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/squeeze_computer/internal/config"
	"github.com/relabs-tech/squeeze_computer/squeeze"
)

func RunWeb() error {
	cfg := config.Get()

	var (
		mu           sync.RWMutex
		lastFeatures squeeze.Features
		haveFeatures bool
	)

	// Local engine re-driven from the raw topic. It carries the recorded
	// forms, so record/recognize work against live data even though the
	// sensor hangs off the producer process.
	eng := squeeze.New()

	// 1) Connect to MQTT broker on the Pi
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID("squeeze-web-subscriber")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("connected to MQTT broker at %s", cfg.MQTTBroker)

	// 2) Subscribe to the features topic and keep the latest snapshot
	token := client.Subscribe(cfg.TopicFeatures, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var f squeeze.Features
		if err := json.Unmarshal(msg.Payload(), &f); err != nil {
			log.Printf("MQTT payload unmarshal error: %v", err)
			return
		}
		mu.Lock()
		lastFeatures = f
		haveFeatures = true
		mu.Unlock()
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("subscribed to MQTT topic %s", cfg.TopicFeatures)

	// 3) Re-drive the local engine from the raw frames. Each message is
	// re-framed as delimiter + values + delimiter: the first one syncs the
	// decoder, and the empty frame a later message's leading delimiter
	// completes is displaced by the real frame behind it.
	rawToken := client.Subscribe(cfg.TopicRaw, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var r rawPayload
		if err := json.Unmarshal(msg.Payload(), &r); err != nil {
			log.Printf("MQTT raw unmarshal error: %v", err)
			return
		}

		chunk := make([]byte, 0, len(r.Values)+2)
		chunk = append(chunk, 0)
		for _, v := range r.Values {
			chunk = append(chunk, byte(v))
		}
		chunk = append(chunk, 0)
		eng.Tick(chunk)
	})
	rawToken.Wait()
	if rawToken.Error() != nil {
		return rawToken.Error()
	}
	log.Printf("subscribed to MQTT topic %s", cfg.TopicRaw)

	// 4) Mirror the form fits to MQTT so the console and the display see
	// what web clients record
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.PublishInterval) * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			forms := eng.Forms()
			if forms == nil {
				continue
			}
			payload, err := json.Marshal(forms)
			if err != nil {
				log.Printf("forms marshal error: %v", err)
				continue
			}
			if token := client.Publish(cfg.TopicForms, 0, true, payload); token.Wait() && token.Error() != nil {
				log.Printf("MQTT publish error (forms): %v", token.Error())
			}
		}
	}()

	// 5) JSON API endpoint: latest producer snapshot
	http.HandleFunc("/api/features", func(w http.ResponseWriter, r *http.Request) {
		mu.RLock()
		defer mu.RUnlock()

		if !haveFeatures {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(lastFeatures); err != nil {
			log.Printf("json encode error: %v", err)
		}
	})

	// 6) JSON API endpoint: recorded forms with momentary fits
	http.HandleFunc("/api/forms", func(w http.ResponseWriter, r *http.Request) {
		forms := eng.Forms()
		if forms == nil {
			forms = []squeeze.FormFit{}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(forms); err != nil {
			log.Printf("json encode error: %v", err)
		}
	})

	// 7) WebSocket: live feature stream plus record/recognize actions
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		HandleSqueezeWS(w, r, eng, time.Duration(cfg.WebStreamInterval)*time.Millisecond)
	})

	// 8) Static files from ./web as the root
	fs := http.FileServer(http.Dir("web"))
	http.Handle("/", fs)

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web server listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}
