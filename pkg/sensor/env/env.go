// Package env sets up a Sensor Node from flags and environment variables.
package env

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/humidistat/pkg/aht20"
	"github.com/robotalks/humidistat/pkg/link"
	"github.com/robotalks/humidistat/pkg/link/serial"
	"github.com/robotalks/humidistat/pkg/msgs"
	"github.com/robotalks/humidistat/pkg/sensor"
)

// Config provides the options of a Sensor Node.
type Config struct {
	// UpstreamPort is the serial device receiving commands.
	UpstreamPort string
	// BridgePort is the serial device linked to the Bridge Node.
	BridgePort string
	BaudRate   int

	// AckTimeout must exceed the quiet period of the Bridge Node plus the
	// transmission time of a frame, the Bridge Node replies only after it.
	AckTimeout  time.Duration
	MaxAttempts int
	Backoff     time.Duration

	MeasureInterval time.Duration
	// I2CDevice is the i2c-dev device of the sensor, ignored if Simulate.
	I2CDevice string
	Simulate  bool
}

var defaultConfig = Config{
	BaudRate:   serial.DefaultBaudRate,
	AckTimeout: link.DefaultAckTimeout,
	I2CDevice:  "/dev/i2c-1",
}

func init() {
	if val := os.Getenv("HUMIDISTAT_UPSTREAM_PORT"); val != "" {
		defaultConfig.UpstreamPort = val
	}
	if val := os.Getenv("HUMIDISTAT_SENSOR_BRIDGE_PORT"); val != "" {
		defaultConfig.BridgePort = val
	}
	if val := os.Getenv("HUMIDISTAT_I2C_DEVICE"); val != "" {
		defaultConfig.I2CDevice = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.UpstreamPort, "upstream-port", defaultConfig.UpstreamPort, "Serial device receiving commands")
	flag.StringVar(&defaultConfig.BridgePort, "bridge-port", defaultConfig.BridgePort, "Serial device linked to the Bridge Node")
	flag.IntVar(&defaultConfig.BaudRate, "baud", defaultConfig.BaudRate, "Serial baud rate")
	flag.DurationVar(&defaultConfig.AckTimeout, "ack-timeout", defaultConfig.AckTimeout, "Wait for ACK before retransmitting")
	flag.IntVar(&defaultConfig.MaxAttempts, "max-attempts", defaultConfig.MaxAttempts, "Transmissions before giving up, 0 for unlimited")
	flag.DurationVar(&defaultConfig.Backoff, "backoff", defaultConfig.Backoff, "Extra wait added per failed transmission")
	flag.DurationVar(&defaultConfig.MeasureInterval, "measure-interval", defaultConfig.MeasureInterval, "Periodic measurement, 0 for trigger only")
	flag.StringVar(&defaultConfig.I2CDevice, "i2c", defaultConfig.I2CDevice, "i2c-dev device of the sensor")
	flag.BoolVar(&defaultConfig.Simulate, "sim", defaultConfig.Simulate, "Use a simulated sensor")
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

// Policy returns the retransmission policy.
func (c *Config) Policy() link.Policy {
	return link.Policy{
		Timeout:     c.AckTimeout,
		MaxAttempts: c.MaxAttempts,
		Backoff:     c.Backoff,
	}
}

// NewDriver creates the sensor driver.
func (c *Config) NewDriver(ctx context.Context) (*aht20.Driver, error) {
	var bus aht20.Bus
	if c.Simulate {
		bus = aht20.NewSimulator(msgs.Reading{Temperature: 22.5, Humidity: 55.25})
	} else {
		i2c, err := aht20.OpenI2C(c.I2CDevice, aht20.Address)
		if err != nil {
			return nil, err
		}
		bus = i2c
	}
	driver := aht20.New(bus)
	if err := driver.Init(ctx); err != nil {
		return nil, fmt.Errorf("init sensor: %w", err)
	}
	return driver, nil
}

// NewNode opens the serial ports and creates the Sensor Node.
func (c *Config) NewNode(ctx context.Context) (*sensor.Node, error) {
	if c.UpstreamPort == "" || c.BridgePort == "" {
		return nil, fmt.Errorf("upstream and bridge ports must be specified")
	}
	driver, err := c.NewDriver(ctx)
	if err != nil {
		return nil, err
	}
	upstream, err := serial.Open(c.UpstreamPort, c.BaudRate)
	if err != nil {
		return nil, err
	}
	bridge, err := serial.Open(c.BridgePort, c.BaudRate)
	if err != nil {
		upstream.Close()
		return nil, err
	}
	return c.NewNodeWith(upstream, bridge, driver), nil
}

// NewNodeWith creates the Sensor Node over opened ports.
func (c *Config) NewNodeWith(upstream, bridge link.Port, driver sensor.Driver) *sensor.Node {
	if c.AckTimeout > 0 && c.AckTimeout <= link.DefaultQuietPeriod {
		glog.Warningf("ack timeout %v doesn't exceed the bridge quiet period %v, frames will be retransmitted", c.AckTimeout, link.DefaultQuietPeriod)
	}
	node := sensor.NewNode(upstream, bridge, c.Policy(), driver)
	node.MeasureInterval = c.MeasureInterval
	return node
}

// MustNewNode creates the Sensor Node and fails on error.
func (c *Config) MustNewNode(ctx context.Context) *sensor.Node {
	node, err := c.NewNode(ctx)
	if err != nil {
		log.Fatalln(err)
	}
	return node
}
