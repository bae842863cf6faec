package app

import (
	"encoding/json"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/squeeze_computer/internal/config"
	"github.com/relabs-tech/squeeze_computer/squeeze"
)

// DisplayData holds the latest data for display
type DisplayData struct {
	mu sync.RWMutex

	features     squeeze.Features
	haveFeatures bool

	forms     []squeeze.FormFit
	haveForms bool
}

func RunDisplay() error {
	cfg := config.Get()

	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	// Open I2C bus
	bus, err := i2creg.Open("")
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	// Initialize display (the driver fixes the I2C address at 0x3C)
	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Println("display: initialized")

	// Show splash screen
	if err := showSplash(dev); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	// Data storage
	data := &DisplayData{}

	// Connect to MQTT
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDDisplay)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("display: connected to MQTT broker at %s", cfg.MQTTBroker)

	// Features drive the magnitude and electrodes content
	token := client.Subscribe(cfg.TopicFeatures, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var f squeeze.Features
		if err := json.Unmarshal(msg.Payload(), &f); err != nil {
			log.Printf("display: features unmarshal error: %v", err)
			return
		}
		data.mu.Lock()
		data.features = f
		data.haveFeatures = true
		data.mu.Unlock()
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("display: subscribed to %s", cfg.TopicFeatures)

	// Form fits come from the web app's engine
	formsToken := client.Subscribe(cfg.TopicForms, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var fits []squeeze.FormFit
		if err := json.Unmarshal(msg.Payload(), &fits); err != nil {
			log.Printf("display: forms unmarshal error: %v", err)
			return
		}
		data.mu.Lock()
		data.forms = fits
		data.haveForms = true
		data.mu.Unlock()
	})
	formsToken.Wait()
	if formsToken.Error() != nil {
		return formsToken.Error()
	}
	log.Printf("display: subscribed to %s", cfg.TopicForms)

	// Display update loop
	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")

	for range ticker.C {
		// Read data without copying the mutex
		data.mu.RLock()
		snapshot := DisplayData{
			features:     data.features,
			haveFeatures: data.haveFeatures,
			forms:        data.forms,
			haveForms:    data.haveForms,
		}
		data.mu.RUnlock()

		if err := updateDisplay(dev, cfg.DisplayContent, &snapshot); err != nil {
			log.Printf("display: error updating display: %v", err)
		}
	}

	return nil
}

func updateDisplay(dev *ssd1306.Dev, content string, data *DisplayData) error {
	switch content {
	case "magnitude":
		return updateMagnitudeDisplay(dev, data.features, data.haveFeatures)
	case "electrodes":
		return updateElectrodesDisplay(dev, data.features, data.haveFeatures)
	case "forms":
		return updateFormsDisplay(dev, data.forms, data.haveForms)
	default:
		return fmt.Errorf("unknown display content type: %s", content)
	}
}

func updateMagnitudeDisplay(dev *ssd1306.Dev, f squeeze.Features, haveData bool) error {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))

	// Blank image
	for i := 0; i < 1024; i++ {
		img.Pix[i] = 0
	}

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	if !haveData {
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte("Squeeze"))
		drawer.Dot = fixed.P(0, 39)
		drawer.DrawBytes([]byte("Waiting..."))
	} else {
		drawer.Dot = fixed.P(0, 13)
		drawer.DrawBytes([]byte(fmt.Sprintf("MAG %6.3f", f.Magnitude)))

		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte(fmt.Sprintf("AVG %6.3f", f.Average)))

		drawer.Dot = fixed.P(0, 39)
		drawer.DrawBytes([]byte(fmt.Sprintf("MAX %6.3f", f.Max)))

		// norm bar along the bottom
		w := int(f.Norm * 127)
		if w < 0 {
			w = 0
		}
		if w > 127 {
			w = 127
		}
		fillRect(img, 0, 50, w, 10)
	}

	return dev.Draw(dev.Bounds(), img, image.Point{})
}

func updateElectrodesDisplay(dev *ssd1306.Dev, f squeeze.Features, haveData bool) error {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))

	// Blank image
	for i := 0; i < 1024; i++ {
		img.Pix[i] = 0
	}

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	if !haveData || len(f.Electrodes) == 0 {
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte("Electrodes"))
		drawer.Dot = fixed.P(0, 39)
		drawer.DrawBytes([]byte("Waiting..."))
		return dev.Draw(dev.Bounds(), img, image.Point{})
	}

	// one bar per electrode, scaled by its normalized level
	for _, ef := range f.Electrodes {
		h := int(ef.Norm * 40)
		if h < 0 {
			h = 0
		}
		if h > 40 {
			h = 40
		}
		x := ef.Electrode*16 + 2
		fillRect(img, x, 50-h, 12, h)

		drawer.Dot = fixed.P(x+2, 63)
		drawer.DrawBytes([]byte(fmt.Sprintf("%d", ef.Electrode)))
	}

	return dev.Draw(dev.Bounds(), img, image.Point{})
}

func updateFormsDisplay(dev *ssd1306.Dev, forms []squeeze.FormFit, haveData bool) error {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))

	// Blank image
	for i := 0; i < 1024; i++ {
		img.Pix[i] = 0
	}

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	if !haveData || len(forms) == 0 {
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte("Forms"))
		drawer.Dot = fixed.P(0, 39)
		drawer.DrawBytes([]byte("None recorded"))
		return dev.Draw(dev.Bounds(), img, image.Point{})
	}

	// top four forms, one line each
	for i, ff := range forms {
		if i >= 4 {
			break
		}
		label := ff.Label
		if label == "" {
			label = "-"
		}
		if len(label) > 8 {
			label = label[:8]
		}
		drawer.Dot = fixed.P(0, 13+13*i)
		drawer.DrawBytes([]byte(fmt.Sprintf("%-8s %4.2f", label, ff.Fit)))
	}

	return dev.Draw(dev.Bounds(), img, image.Point{})
}

// fillRect lights a solid rectangle; image1bit has no drawing helpers.
func fillRect(img *image1bit.VerticalLSB, x, y, w, h int) {
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			img.SetBit(x+dx, y+dy, image1bit.On)
		}
	}
}

func showSplash(dev *ssd1306.Dev) error {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))

	// Blank image
	for i := 0; i < 1024; i++ {
		img.Pix[i] = 0
	}

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	drawer.Dot = fixed.P(10, 26)
	drawer.DrawBytes([]byte("Squeeze Pi"))

	drawer.Dot = fixed.P(5, 43)
	drawer.DrawBytes([]byte("Waiting for"))

	drawer.Dot = fixed.P(25, 56)
	drawer.DrawBytes([]byte("frames"))

	return dev.Draw(dev.Bounds(), img, image.Point{})
}
