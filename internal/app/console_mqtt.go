package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/squeeze_computer/squeeze"
)

func RunConsoleMQTT() error {
	opts := mqtt.NewClientOptions().
		AddBroker("tcp://localhost:1883").
		SetClientID("squeeze-console-subscriber")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Println("console: connected to MQTT broker at tcp://localhost:1883")

	// Subscribe to features
	featuresToken := client.Subscribe("squeeze/features", 0, func(_ mqtt.Client, msg mqtt.Message) {
		var f squeeze.Features
		if err := json.Unmarshal(msg.Payload(), &f); err != nil {
			log.Printf("console: features unmarshal error: %v", err)
			return
		}

		if !f.Running {
			fmt.Printf("[SQZ ]  idle\n")
			return
		}
		fmt.Printf(
			"[SQZ ]  DIM=%2d  MAG=%6.3f  AVG=%6.3f  NORM=%6.3f  DERIV=%+6.3f  MAX=%6.3f\n",
			f.Dim, f.Magnitude, f.Average, f.Norm, f.Derivative, f.Max,
		)
	})
	featuresToken.Wait()
	if featuresToken.Error() != nil {
		return featuresToken.Error()
	}
	log.Println("console: subscribed to squeeze/features")

	// Subscribe to raw frames
	rawToken := client.Subscribe("squeeze/raw", 0, func(_ mqtt.Client, msg mqtt.Message) {
		var r struct {
			Dim    int   `json:"dim"`
			Values []int `json:"values"`
		}
		if err := json.Unmarshal(msg.Payload(), &r); err != nil {
			log.Printf("console: raw unmarshal error: %v", err)
			return
		}

		fmt.Printf("[RAW ]  dim=%2d values=%v\n", r.Dim, r.Values)
	})
	rawToken.Wait()
	if rawToken.Error() != nil {
		return rawToken.Error()
	}
	log.Println("console: subscribed to squeeze/raw")

	// Subscribe to form fits
	formsToken := client.Subscribe("squeeze/forms", 0, func(_ mqtt.Client, msg mqtt.Message) {
		var fits []squeeze.FormFit
		if err := json.Unmarshal(msg.Payload(), &fits); err != nil {
			log.Printf("console: forms unmarshal error: %v", err)
			return
		}

		for _, ff := range fits {
			fmt.Printf("[FORM]  label=%q fit=%4.2f samples=%d\n", ff.Label, ff.Fit, ff.Samples)
		}
	})
	formsToken.Wait()
	if formsToken.Error() != nil {
		return formsToken.Error()
	}
	log.Println("console: subscribed to squeeze/forms")

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
