package main

import (
	"encoding/json"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/relabs-tech/squeeze_computer/squeeze"
)

func main() {
	log.Println("starting squeeze-computer MQTT producer (mock)")

	// 1) Connect to MQTT broker on the Pi
	opts := mqtt.NewClientOptions().
		AddBroker("tcp://localhost:1883").
		SetClientID("squeeze-producer-mock")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("MQTT connect error: %v", token.Error())
	}
	defer client.Disconnect(250)

	feed := squeeze.NewMockFeed()
	eng := squeeze.New()

	buf := make([]byte, 64)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for t := range ticker.C {
		n, err := feed.Read(buf)
		if err != nil {
			log.Printf("error from mock feed: %v", err)
			continue
		}
		eng.Tick(buf[:n])

		snap := eng.Snapshot()
		payload, err := json.Marshal(snap)
		if err != nil {
			log.Printf("json marshal error: %v", err)
			continue
		}

		token := client.Publish("squeeze/features", 0, true, payload)
		token.Wait()

		log.Printf("%s published features: dim=%d mag=%.3f norm=%.3f",
			t.Format(time.RFC3339), snap.Dim, snap.Magnitude, snap.Norm)
	}
}
