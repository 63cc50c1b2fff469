package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/robotalks/humidistat/pkg/bridge/mqtt"
)

var (
	mqttURL = "mqtt://localhost:1883/humidistat/"
)

func init() {
	if val := os.Getenv("HUMIDISTAT_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	q.Sub("#", mqtt.Handler(func(topic string, payload []byte) {
		switch {
		case strings.HasSuffix(topic, "/meta"):
			if len(payload) == 0 {
				log.Printf("%s: gone", topic)
				return
			}
			log.Printf("%s: %s", topic, string(payload))
		case strings.HasSuffix(topic, "/reading"):
			sample, err := mqtt.DecodeReading(payload)
			if err != nil {
				log.Printf("%s: bad reading: %v", topic, err)
				return
			}
			log.Printf("%s: %s at %s", topic, sample.Reading, sample.Time.Format("15:04:05"))
		default:
			log.Printf("%s: %d bytes", topic, len(payload))
		}
	}))
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}
	<-(chan struct{})(nil)
}
