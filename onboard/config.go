package onboard

import (
	"fmt"
	"io/ioutil"
	"os"
	"time"

	deverr "github.com/CodedInternet/wiiarm/onboard/errors"
	"github.com/CodedInternet/wiiarm/onboard/hardware"
	"github.com/CodedInternet/wiiarm/onboard/input"
	"github.com/CodedInternet/wiiarm/onboard/motion"
	"github.com/Masterminds/semver"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	// config files this build understands
	CONFIG_VERSION = "~1.0"

	DEFAULT_SPEED      = 10
	DEFAULT_HOME_SPEED = 100
)

type RegisterConfig struct {
	Device string `yaml:"device"`
	Base   uint32 `yaml:"base"`
	Length int    `yaml:"length"`
}

type MotionConfig struct {
	Strategy  string        `yaml:"strategy"` // host or device
	StepRate  int           `yaml:"step_rate"`
	Quantum   time.Duration `yaml:"quantum"`
	Speed     int           `yaml:"speed"` // teleoperation speed
	HomeSpeed int           `yaml:"home_speed"`
}

type InputConfig struct {
	Buttons string `yaml:"buttons"`
	Accel   string `yaml:"accel"`
}

type ArmConfig struct {
	Version   string             `yaml:"version"`
	Registers RegisterConfig     `yaml:"registers"`
	Channels  []hardware.Channel `yaml:"channels"`
	Motion    MotionConfig       `yaml:"motion"`
	Input     InputConfig        `yaml:"input"`
	Links     Linkage            `yaml:"links"`
}

// DefaultConfig describes the stock arm on the stock FPGA image.
func DefaultConfig() ArmConfig {
	return ArmConfig{
		Version: "1.0.0",
		Registers: RegisterConfig{
			Device: hardware.MEM_DEVICE,
			Base:   hardware.REG_BASE_ADDRESS,
			Length: hardware.REG_WINDOW_LEN,
		},
		Channels: append([]hardware.Channel(nil), hardware.DefaultChannels[:]...),
		Motion: MotionConfig{
			Strategy:  motion.STRATEGY_DEVICE,
			StepRate:  motion.DEFAULT_STEP_RATE,
			Quantum:   motion.DEFAULT_QUANTUM,
			Speed:     DEFAULT_SPEED,
			HomeSpeed: DEFAULT_HOME_SPEED,
		},
		Input: InputConfig{
			Buttons: input.BUTTON_DEVICE,
			Accel:   input.ACCEL_DEVICE,
		},
		Links: DefaultLinkage,
	}
}

// LoadConfig reads a yaml config over the defaults. A missing file is not an error, the
// defaults are used as they are.
func LoadConfig(filename string) (config ArmConfig, err error) {
	config = DefaultConfig()

	raw, err := ioutil.ReadFile(filename)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return config, errors.Wrapf(err, "unable to read config %s", filename)
	}

	if err = yaml.Unmarshal(raw, &config); err != nil {
		return config, errors.Wrapf(err, "unable to unmarshal config %s", filename)
	}

	err = config.Validate()
	return
}

// Validate checks the version, that every channel 1..5 is described exactly once with a
// register inside the window, and that the motion settings suit the strategy.
func (c *ArmConfig) Validate() (err error) {
	version, err := semver.NewVersion(c.Version)
	if err != nil {
		return errors.Wrapf(err, "bad config version '%s'", c.Version)
	}

	constraint, err := semver.NewConstraint(CONFIG_VERSION)
	if err != nil {
		return
	}

	if !constraint.Check(version) {
		return deverr.ConfigVersionError{Version: c.Version, Constraint: CONFIG_VERSION}
	}

	table, err := c.ChannelTable()
	if err != nil {
		return
	}

	for _, ch := range table {
		if ch.Offset%hardware.REG_WIDTH != 0 || int64(ch.Offset)+hardware.REG_WIDTH > int64(c.Registers.Length) {
			return errors.Wrapf(hardware.ERR_BAD_OFFSET, "channel %d offset 0x%x in a %d byte window",
				ch.ID, ch.Offset, c.Registers.Length)
		}
	}

	if c.Motion.Speed <= 0 || c.Motion.HomeSpeed <= 0 {
		return fmt.Errorf("speeds must be positive, got speed %d home_speed %d", c.Motion.Speed, c.Motion.HomeSpeed)
	}

	switch c.Motion.Strategy {
	case motion.STRATEGY_HOST:
		if c.Motion.StepRate <= 0 {
			return fmt.Errorf("step_rate must be positive, got %d", c.Motion.StepRate)
		}
	case motion.STRATEGY_DEVICE:
		// speed is packed into a single byte of the register
		if c.Motion.Speed > motion.MAX_DEVICE_SPEED || c.Motion.HomeSpeed > motion.MAX_DEVICE_SPEED {
			return fmt.Errorf("device speeds must not exceed %d, got speed %d home_speed %d",
				motion.MAX_DEVICE_SPEED, c.Motion.Speed, c.Motion.HomeSpeed)
		}
	default:
		return fmt.Errorf("unknown motion strategy '%s'", c.Motion.Strategy)
	}

	return nil
}

// ChannelTable builds the lookup table from the configured channel list.
func (c *ArmConfig) ChannelTable() (table hardware.ChannelTable, err error) {
	if len(c.Channels) != hardware.NUM_CHANNELS {
		return table, fmt.Errorf("expected %d channels, got %d", hardware.NUM_CHANNELS, len(c.Channels))
	}

	var seen [hardware.NUM_CHANNELS]bool
	for _, ch := range c.Channels {
		if ch.ID < 1 || ch.ID > hardware.NUM_CHANNELS {
			return table, deverr.ChannelError{ID: ch.ID}
		}
		if seen[ch.ID-1] {
			return table, fmt.Errorf("channel %d configured twice", ch.ID)
		}
		seen[ch.ID-1] = true
		table[ch.ID-1] = ch
	}

	return
}
