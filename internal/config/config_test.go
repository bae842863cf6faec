package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "squeeze_config.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

const validConfig = `# squeeze computer configuration
FEED_SOURCE=serial
SERIAL_PORT=/dev/ttyACM0
BAUD_RATE=9600

MQTT_BROKER=tcp://localhost:1883
MQTT_CLIENT_ID_PRODUCER=squeeze-producer
MQTT_CLIENT_ID_CONSOLE=squeeze-console
MQTT_CLIENT_ID_DISPLAY=squeeze-display

TOPIC_FEATURES=squeeze/features
TOPIC_RAW=squeeze/raw
TOPIC_ELECTRODES=squeeze/electrodes
TOPIC_FORMS=squeeze/forms

PUBLISH_INTERVAL=50
CONSOLE_LOG_INTERVAL=500
WEB_SERVER_PORT=8080
WEB_STREAM_INTERVAL=100
DISPLAY_UPDATE_INTERVAL=200
DISPLAY_CONTENT=magnitude
`

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.FeedSource != "serial" {
		t.Errorf("FeedSource = %q, want %q", cfg.FeedSource, "serial")
	}
	if cfg.SerialPort != "/dev/ttyACM0" {
		t.Errorf("SerialPort = %q, want %q", cfg.SerialPort, "/dev/ttyACM0")
	}
	if cfg.BaudRate != 9600 {
		t.Errorf("BaudRate = %d, want 9600", cfg.BaudRate)
	}
	if cfg.MQTTBroker != "tcp://localhost:1883" {
		t.Errorf("MQTTBroker = %q, want %q", cfg.MQTTBroker, "tcp://localhost:1883")
	}
	if cfg.TopicFeatures != "squeeze/features" {
		t.Errorf("TopicFeatures = %q, want %q", cfg.TopicFeatures, "squeeze/features")
	}
	if cfg.PublishInterval != 50 {
		t.Errorf("PublishInterval = %d, want 50", cfg.PublishInterval)
	}
	if cfg.WebServerPort != 8080 {
		t.Errorf("WebServerPort = %d, want 8080", cfg.WebServerPort)
	}
	if cfg.DisplayContent != "magnitude" {
		t.Errorf("DisplayContent = %q, want %q", cfg.DisplayContent, "magnitude")
	}
}

func TestLoadSkipsCommentsAndBlankLines(t *testing.T) {
	content := "# leading comment\n\n" + validConfig + "\n# trailing comment\n"
	if _, err := Load(writeConfig(t, content)); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func TestLoadRejectsMalformedLine(t *testing.T) {
	_, err := Load(writeConfig(t, validConfig+"THIS IS NOT A KEY VALUE PAIR\n"))
	if err == nil {
		t.Fatal("Load accepted a malformed line")
	}
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	_, err := Load(writeConfig(t, validConfig+"NO_SUCH_KEY=1\n"))
	if err == nil || !strings.Contains(err.Error(), "unknown config key") {
		t.Fatalf("Load error = %v, want unknown config key", err)
	}
}

func TestLoadRejectsBadFeedSource(t *testing.T) {
	content := strings.Replace(validConfig, "FEED_SOURCE=serial", "FEED_SOURCE=telepathy", 1)
	if _, err := Load(writeConfig(t, content)); err == nil {
		t.Fatal("Load accepted an invalid FEED_SOURCE")
	}
}

func TestLoadRejectsBadDisplayContent(t *testing.T) {
	content := strings.Replace(validConfig, "DISPLAY_CONTENT=magnitude", "DISPLAY_CONTENT=weather", 1)
	if _, err := Load(writeConfig(t, content)); err == nil {
		t.Fatal("Load accepted an invalid DISPLAY_CONTENT")
	}
}

func TestLoadRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		remove string
	}{
		{"missing broker", "MQTT_BROKER=tcp://localhost:1883\n"},
		{"missing feed source", "FEED_SOURCE=serial\n"},
		{"missing publish interval", "PUBLISH_INTERVAL=50\n"},
		{"missing console log interval", "CONSOLE_LOG_INTERVAL=500\n"},
	}

	for _, tt := range tests {
		content := strings.Replace(validConfig, tt.remove, "", 1)
		if _, err := Load(writeConfig(t, content)); err == nil {
			t.Errorf("%s: Load accepted the config", tt.name)
		}
	}
}

func TestLoadSerialFieldsRequiredForSerialFeed(t *testing.T) {
	content := strings.Replace(validConfig, "SERIAL_PORT=/dev/ttyACM0\n", "", 1)
	if _, err := Load(writeConfig(t, content)); err == nil {
		t.Fatal("Load accepted FEED_SOURCE=serial without SERIAL_PORT")
	}

	// the mock feed needs no port at all
	content = strings.Replace(validConfig, "FEED_SOURCE=serial", "FEED_SOURCE=mock", 1)
	content = strings.Replace(content, "SERIAL_PORT=/dev/ttyACM0\n", "", 1)
	content = strings.Replace(content, "BAUD_RATE=9600\n", "", 1)
	if _, err := Load(writeConfig(t, content)); err != nil {
		t.Fatalf("Load rejected a mock-feed config: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Fatal("Load accepted a missing file")
	}
}
