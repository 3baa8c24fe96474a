package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"

	. "github.com/CodedInternet/wiiarm/onboard"
	"github.com/CodedInternet/wiiarm/onboard/input"
	"github.com/abiosoft/ishell"
	"github.com/caarlos0/env/v6"
)

type EnvConfig struct {
	CONFIG    string `env:"ARM_CONFIG" envDefault:"./arm_config.yaml"`
	SIMULATED bool   `env:"ARM_SIMULATED" envDefault:"false"`
	DEBUG     bool   `env:"DEBUG" envDefault:"false"`
}

var (
	ENV *EnvConfig
	LOG *log.Logger
)

func init() {
	ENV = new(EnvConfig)
	if err := env.Parse(ENV); err != nil {
		panic(err)
	}

	flags := log.LstdFlags
	if ENV.DEBUG {
		flags |= log.Lshortfile
	}
	LOG = log.New(os.Stderr, "wiiarm: ", flags)
}

func main() {
	simulated := flag.Bool("sim", ENV.SIMULATED, "Run against a simulated register window and wiimote")
	interactive := flag.Bool("shell", false, "Start the development shell instead of teleoperating")
	configFile := flag.String("config", ENV.CONFIG, "Path to the arm config")
	flag.Parse()

	filename, err := filepath.Abs(*configFile)
	if err != nil {
		LOG.Fatalf("Unable to find config: %v", err)
	}

	config, err := LoadConfig(filename)
	if err != nil {
		LOG.Fatalf("Unable to load config: %v", err)
	}
	if ENV.DEBUG {
		LOG.Printf("Establishing arm with config %#v", config)
	}

	window, err := OpenWindow(config.Registers, *simulated)
	if err != nil {
		LOG.Fatalf("Unable to map registers: %v", err)
	}

	arm, err := NewManipulator(config, window)
	if err != nil {
		window.Close()
		LOG.Fatalf("Unable to initialize arm: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = arm.Home(ctx); err != nil {
		arm.Release(context.Background())
		LOG.Fatalf("Unable to home arm: %v", err)
	}

	if *interactive {
		runShell(ctx, arm, config, *simulated)
	} else if err = teleoperate(ctx, arm, config, *simulated); err != nil && err != context.Canceled {
		LOG.Printf("Teleoperation stopped: %v", err)
	}

	if err = arm.Release(context.Background()); err != nil {
		LOG.Fatalf("Unable to release arm: %v", err)
	}
}

func openWiimote(config ArmConfig, simulated bool) (wiimote *input.Wiimote, buttons *SimulatedButtons, err error) {
	if simulated {
		wiimote, buttons = NewSimulatedWiimote(true)
		return
	}

	wiimote, err = input.OpenWiimote(config.Input.Buttons, config.Input.Accel)
	return
}

func teleoperate(ctx context.Context, arm *Manipulator, config ArmConfig, simulated bool) error {
	wiimote, _, err := openWiimote(config, simulated)
	if err != nil {
		return err
	}
	defer wiimote.Close()

	LOG.Println("Hold A, B, 1, 2 or DOWN and tilt to move a joint, HOME to finish")
	return NewTeleop(arm, wiimote, config.Motion.Speed, LOG).Run(ctx)
}

func parseInts(args []string, n int) (vals []int, err error) {
	if len(args) != n {
		return nil, fmt.Errorf("expected %d arguments, got %d", n, len(args))
	}

	for _, arg := range args {
		var v int
		if v, err = strconv.Atoi(arg); err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return
}

// servoID accepts either a channel number or a channel name.
func servoID(arm *Manipulator, arg string) (int, error) {
	if id, err := strconv.Atoi(arg); err == nil {
		return id, nil
	}

	table := arm.Arm.Channels()
	c, err := table.ByName(arg)
	return c.ID, err
}

func runShell(ctx context.Context, arm *Manipulator, config ArmConfig, simulated bool) {
	shell := ishell.New()
	shell.Println("Wii arm development shell")

	shell.AddCmd(&ishell.Cmd{
		Name: "move",
		Help: "move <servo> <position (deg)> <speed (deg/s)>",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 3 {
				c.Println("usage: move <servo> <position> <speed>")
				return
			}
			id, err := servoID(arm, c.Args[0])
			if err != nil {
				c.Println(err)
				return
			}
			vals, err := parseInts(c.Args[1:], 2)
			if err != nil {
				c.Println(err)
				return
			}

			c.Printf("Moving servo %d to %d at %d\n", id, vals[0], vals[1])
			if err = arm.MoveTo(ctx, id, vals[0], vals[1]); err != nil {
				c.Println(err)
			}
		},
	})
	shell.AddCmd(&ishell.Cmd{
		Name: "raw",
		Help: "raw <servo> <value> writes a register value as is",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 2 {
				c.Println("usage: raw <servo> <value>")
				return
			}
			id, err := servoID(arm, c.Args[0])
			if err != nil {
				c.Println(err)
				return
			}
			value, err := strconv.ParseUint(c.Args[1], 0, 32)
			if err != nil {
				c.Println(err)
				return
			}

			if err = arm.WriteRaw(id, uint32(value)); err != nil {
				c.Println(err)
			}
		},
	})
	shell.AddCmd(&ishell.Cmd{
		Name: "home",
		Help: "home all servos",
		Func: func(c *ishell.Context) {
			c.Println("Homing")
			if err := arm.Home(ctx); err != nil {
				c.Println(err)
			}
		},
	})
	shell.AddCmd(&ishell.Cmd{
		Name: "state",
		Func: func(c *ishell.Context) {
			state := arm.State()
			for i, ch := range arm.Arm.Channels() {
				c.Printf("%d %-8s %4d\n", ch.ID, ch.Name, state.Angles[i])
			}
			c.Printf("tip %.1f %.1f %.1f\n", state.Tip.X(), state.Tip.Y(), state.Tip.Z())
		},
	})

	var (
		session Session
		lock    sync.Mutex
		buttons *SimulatedButtons
	)
	shell.AddCmd(&ishell.Cmd{
		Name: "teleop",
		Help: "teleoperate in the background until HOME is pressed or stop is run",
		Func: func(c *ishell.Context) {
			if session.Running() {
				c.Println(ERR_SESSION_RUNNING)
				return
			}

			wiimote, sim, err := openWiimote(config, simulated)
			if err != nil {
				c.Println(err)
				return
			}

			lock.Lock()
			buttons = sim
			lock.Unlock()

			err = session.Start(ctx, NewTeleop(arm, wiimote, config.Motion.Speed, LOG), func(err error) {
				if err != nil {
					LOG.Printf("Teleoperation stopped: %v", err)
				}
				wiimote.Close()

				lock.Lock()
				buttons = nil
				lock.Unlock()
			})
			if err != nil {
				wiimote.Close()
				c.Println(err)
			}
		},
	})
	shell.AddCmd(&ishell.Cmd{
		Name: "stop",
		Help: "stop a running teleop",
		Func: func(c *ishell.Context) {
			if err := session.Stop(); err != nil {
				c.Println(err)
			}
		},
	})

	if simulated {
		shell.AddCmd(&ishell.Cmd{
			Name: "press",
			Help: "press <button> on the simulated wiimote",
			Func: func(c *ishell.Context) {
				lock.Lock()
				defer lock.Unlock()
				if buttons == nil || len(c.Args) != 1 {
					c.Println("usage: press <button>, while teleop is running")
					return
				}
				for b := input.BUTTON_UP; b <= input.BUTTON_B; b++ {
					if strings.EqualFold(b.String(), c.Args[0]) {
						buttons.Press(input.ButtonEvent{Code: b, Value: 1})
						return
					}
				}
				c.Printf("unknown button %s\n", c.Args[0])
			},
		})
	}

	shell.Run()

	// the arm is released by the caller, nothing may write to it after this
	session.Stop()
}
