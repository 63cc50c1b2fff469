// Package env sets up a Bridge Node from flags and environment variables.
package env

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/denisbrodbeck/machineid"

	"github.com/robotalks/humidistat/pkg/bridge"
	"github.com/robotalks/humidistat/pkg/bridge/mqtt"
	"github.com/robotalks/humidistat/pkg/bridge/ws"
	fx "github.com/robotalks/humidistat/pkg/framework"
	"github.com/robotalks/humidistat/pkg/link"
	"github.com/robotalks/humidistat/pkg/link/serial"
	"github.com/robotalks/humidistat/pkg/msgs"
	"github.com/robotalks/humidistat/pkg/network"
)

// Config provides the options of a Bridge Node.
type Config struct {
	// Port is the serial device linked to the Sensor Node.
	Port        string
	BaudRate    int
	// QuietPeriod delays every ACK, so it must stay below the ACK timeout
	// of the Sensor Node minus the transmission time of a frame.
	QuietPeriod time.Duration
	BufferSize  int

	// Name is the advertised instance name.
	Name string
	// MQTTBrokerURL specifies the MQTT broker to use, empty to disable.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL   string
	PublishInterval time.Duration
	// WSAddr is the listening address of the websocket server, empty
	// to disable.
	WSAddr          string
	CredentialsFile string
}

var defaultConfig = Config{
	BaudRate:        serial.DefaultBaudRate,
	QuietPeriod:     link.DefaultQuietPeriod,
	BufferSize:      link.DefaultBufferSize,
	MQTTBrokerURL:   "mqtt://localhost:1883/humidistat/",
	PublishInterval: mqtt.DefaultPublishInterval,
	WSAddr:          ws.DefaultAddr,
}

func init() {
	defaultConfig.Name = DefaultName()
	if val := os.Getenv("HUMIDISTAT_BRIDGE_PORT"); val != "" {
		defaultConfig.Port = val
	}
	if val := os.Getenv("HUMIDISTAT_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("HUMIDISTAT_NAME"); val != "" {
		defaultConfig.Name = val
	}
	if val := os.Getenv("HUMIDISTAT_CREDENTIALS_FILE"); val != "" {
		defaultConfig.CredentialsFile = val
	}
}

// DefaultName derives the instance name from the machine ID.
func DefaultName() string {
	id, err := machineid.ProtectedID("humidistat")
	if err != nil || len(id) < 8 {
		return "humidistat"
	}
	return "humidistat-" + id[:8]
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Port, "port", defaultConfig.Port, "Serial device linked to the Sensor Node")
	flag.IntVar(&defaultConfig.BaudRate, "baud", defaultConfig.BaudRate, "Serial baud rate")
	flag.DurationVar(&defaultConfig.QuietPeriod, "quiet-period", defaultConfig.QuietPeriod, "Silence ending a frame")
	flag.IntVar(&defaultConfig.BufferSize, "buffer-size", defaultConfig.BufferSize, "Receive buffer size")
	flag.StringVar(&defaultConfig.Name, "name", defaultConfig.Name, "Advertised instance name")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL, empty to disable")
	flag.DurationVar(&defaultConfig.PublishInterval, "publish-interval", defaultConfig.PublishInterval, "Reading publish interval")
	flag.StringVar(&defaultConfig.WSAddr, "ws-addr", defaultConfig.WSAddr, "Websocket listening address, empty to disable")
	flag.StringVar(&defaultConfig.CredentialsFile, "credentials-file", defaultConfig.CredentialsFile, "File persisting network credentials")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Env is a wired Bridge Node.
type Env struct {
	Config    *Config
	Port      link.Port
	Registers *bridge.Registers
	Network   *network.Manager
	Node      *bridge.Node
}

// NewEnv opens the serial port and creates Env.
func (c *Config) NewEnv() (*Env, error) {
	if c.Port == "" {
		return nil, fmt.Errorf("serial port must be specified")
	}
	port, err := serial.Open(c.Port, c.BaudRate)
	if err != nil {
		return nil, err
	}
	return c.NewEnvWithPort(port), nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv() *Env {
	env, err := c.NewEnv()
	if err != nil {
		log.Fatalln(err)
	}
	return env
}

// NewEnvWithPort creates Env over an opened port.
func (c *Config) NewEnvWithPort(port link.Port) *Env {
	env := &Env{Config: c, Port: port, Registers: &bridge.Registers{}}
	var store network.Store
	if c.CredentialsFile != "" {
		store = &network.FileStore{Path: c.CredentialsFile}
	}
	env.Network = network.NewManager(env.services, store)
	dispatcher := &bridge.Dispatcher{Registers: env.Registers, Network: env.Network}
	env.Node = bridge.NewNode(port, c.QuietPeriod, c.BufferSize, dispatcher)
	return env
}

func (e *Env) services(creds msgs.Credentials) ([]fx.Runnable, error) {
	var services []fx.Runnable
	if url := e.Config.MQTTBrokerURL; url != "" {
		adv, err := mqtt.NewAdvertiser(url, mqtt.Meta{
			Instance: e.Config.Name,
			Service:  mqtt.DefaultServiceType,
			Port:     listenPort(e.Config.WSAddr),
		}, creds)
		if err != nil {
			return nil, err
		}
		services = append(services, adv, fx.NamedRun("mqtt-publisher", &mqtt.Publisher{
			Queue:    adv.Queue,
			Name:     e.Config.Name,
			Source:   e.Registers,
			Interval: e.Config.PublishInterval,
		}))
	}
	if addr := e.Config.WSAddr; addr != "" {
		services = append(services, &ws.Server{Addr: addr, Source: e.Registers})
	}
	return services, nil
}

// listenPort extracts the port of a listening address, 0 if none.
func listenPort(addr string) int {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return 0
	}
	return n
}

// Runnables returns the tasks of the Bridge Node.
func (e *Env) Runnables() []fx.Runnable {
	return []fx.Runnable{e.Node, e.Network}
}
