// Package sh provides an interactive console for the upstream link of a
// Sensor Node.
package sh

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/humidistat/pkg/link/serial"
	"github.com/robotalks/humidistat/pkg/msgs"
)

// Config provides the options of the console.
type Config struct {
	Port         string
	BaudRate     int
	ReplyTimeout time.Duration
}

var defaultConfig = Config{
	BaudRate:     serial.DefaultBaudRate,
	ReplyTimeout: 2 * time.Second,
}

var (
	// flags

	evalOnly bool

	// commands
	commands = []*ishell.Cmd{
		&MeasureCmd,
		&WifiCmd,
		&SendCmd,
		&PortsCmd,
	}
)

const shellKey = "$shell"

func init() {
	if val := os.Getenv("HUMIDISTAT_CONSOLE_PORT"); val != "" {
		defaultConfig.Port = val
	}
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Port, "port", defaultConfig.Port, "Serial device of the Sensor Node upstream link")
	flag.IntVar(&defaultConfig.BaudRate, "baud", defaultConfig.BaudRate, "Serial baud rate")
	flag.DurationVar(&defaultConfig.ReplyTimeout, "reply-timeout", defaultConfig.ReplyTimeout, "Wait for replies in evaluation mode")
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool

	Shell   *ishell.Shell
	Config  *Config
	Console *Console
}

// New creates a new shell.
func New(conf *Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		Shell:       ishell.New(),
		Config:      conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt("> ")
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeOpened wraps command func requires an opened port.
func MustBeOpened(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Console == nil {
			c.Err(fmt.Errorf("port not opened, use -port"))
			return
		}
		fn(c)
	}
}

// Send transmits a frame and reports failures.
func Send(c *ishell.Context, frame []byte) {
	if err := ShellFrom(c).Console.Send(frame); err != nil {
		c.Err(err)
	}
}

// Open opens the serial port and starts printing replies.
func (s *Shell) Open(ctx context.Context) error {
	port, err := serial.Open(s.Config.Port, s.Config.BaudRate)
	if err != nil {
		return err
	}
	s.Console = NewConsole(port, shellWriter{s.Shell})
	go func() {
		if err := s.Console.Run(ctx); err != nil && ctx.Err() == nil {
			s.Shell.Printf("port closed: %v\n", err)
		}
		port.Close()
	}()
	return nil
}

type shellWriter struct {
	sh *ishell.Shell
}

func (w shellWriter) Write(p []byte) (int, error) {
	w.sh.Print(string(p))
	return len(p), nil
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if s.Config.Port != "" {
		if err := s.Open(ctx); err != nil {
			log.Fatalf("open %q failed: %v", s.Config.Port, err)
		}
	}
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		if s.Console != nil {
			s.waitReplies()
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

func (s *Shell) waitReplies() {
	timeout := time.After(s.Config.ReplyTimeout)
	for {
		select {
		case line := <-s.Console.Lines():
			switch line {
			case "ACK", "NAK", "Start":
				// more to come
			default:
				return
			}
		case <-timeout:
			return
		}
	}
}

var (
	// MeasureCmd triggers a measurement.
	MeasureCmd = ishell.Cmd{
		Name:    "measure",
		Aliases: []string{"m"},
		Help:    "",
		Func: MustBeOpened(func(c *ishell.Context) {
			frame, err := msgs.EncodeUpstream(msgs.MeasureTrigger{})
			if err != nil {
				c.Err(err)
				return
			}
			Send(c, frame)
		}),
	}

	// WifiCmd sends network credentials.
	WifiCmd = ishell.Cmd{
		Name:    "wifi",
		Aliases: []string{"w"},
		Help:    "SSID PASSWORD",
		Func: MustBeOpened(func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("SSID and PASSWORD required"))
				return
			}
			frame, err := msgs.EncodeUpstream(msgs.UpstreamSetNetwork{
				Credentials: msgs.Credentials{SSID: c.Args[0], Password: c.Args[1]},
			})
			if err != nil {
				c.Err(err)
				return
			}
			Send(c, frame)
		}),
	}

	// SendCmd sends a raw expression.
	SendCmd = ishell.Cmd{
		Name:    "send",
		Aliases: []string{"s"},
		Help:    `EXPR... e.g. 0x01 0x04 0x08 "ssid" "password"`,
		Func: MustBeOpened(func(c *ishell.Context) {
			frame, err := EncodeExpr(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			Send(c, frame)
		}),
	}

	// PortsCmd lists serial devices.
	PortsCmd = ishell.Cmd{
		Name: "ports",
		Help: "",
		Func: func(c *ishell.Context) {
			ports, err := serial.List()
			if err != nil {
				c.Err(err)
				return
			}
			for _, port := range ports {
				c.Println(port)
			}
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(NewConfig()).Run(flag.Args()...)
}
