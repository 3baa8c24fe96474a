package onboard

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	deverr "github.com/CodedInternet/wiiarm/onboard/errors"
	"github.com/CodedInternet/wiiarm/onboard/hardware"
	"github.com/CodedInternet/wiiarm/onboard/motion"
	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v2"
)

const testYaml = `
version: 1.0.2
registers:
  base: 0x400D0000
  length: 0x1000
channels:
- {id: 1, name: base, offset: 0x100, home: 90}
- {id: 2, name: bicep, offset: 0x104, home: 190}
- {id: 3, name: elbow, offset: 0x108, home: 190}
- {id: 4, name: wrist, offset: 0x10C, home: 100}
- {id: 5, name: gripper, offset: 0x110, home: 150}
motion:
  strategy: host
  step_rate: 50
  quantum: 20ms
links:
  bicep: 120
`

func writeConfig(t *testing.T, contents string) string {
	dir, err := ioutil.TempDir("", "wiiarm")
	if err != nil {
		t.Fatal(err)
	}
	filename := filepath.Join(dir, "arm_config.yaml")
	if err := ioutil.WriteFile(filename, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	return filename
}

func TestConfigParsing(t *testing.T) {
	Convey("parsing is successful", t, func() {
		filename := writeConfig(t, testYaml)
		defer os.RemoveAll(filepath.Dir(filename))

		config, err := LoadConfig(filename)
		So(err, ShouldBeNil)

		Convey("channels are read in order", func() {
			table, err := config.ChannelTable()
			So(err, ShouldBeNil)
			So(table[1], ShouldResemble, hardware.Channel{ID: 2, Name: "bicep", Offset: 0x104, Home: 190})
			So(table[3].Offset, ShouldEqual, 0x10C)
		})

		Convey("motion settings are read, defaults kept", func() {
			So(config.Motion.Strategy, ShouldEqual, motion.STRATEGY_HOST)
			So(config.Motion.Quantum, ShouldEqual, 20*time.Millisecond)
			So(config.Motion.Speed, ShouldEqual, DEFAULT_SPEED)
			So(config.Motion.HomeSpeed, ShouldEqual, DEFAULT_HOME_SPEED)
			So(config.Registers.Base, ShouldEqual, hardware.REG_BASE_ADDRESS)
			So(config.Registers.Device, ShouldEqual, hardware.MEM_DEVICE)
			So(config.Input.Buttons, ShouldEqual, "/dev/input/event2")
		})

		Convey("links are overlaid", func() {
			So(config.Links.Bicep, ShouldEqual, 120)
			So(config.Links.Forearm, ShouldEqual, DefaultLinkage.Forearm)
		})
	})

	Convey("a missing file gives the defaults", t, func() {
		config, err := LoadConfig("/nonexistent/arm_config.yaml")
		So(err, ShouldBeNil)
		So(config, ShouldResemble, DefaultConfig())
		So(config.Validate(), ShouldBeNil)
	})

	Convey("defaults do not share the global channel table", t, func() {
		config := DefaultConfig()
		config.Channels[0].Home = 1
		So(hardware.DefaultChannels[0].Home, ShouldEqual, hardware.DEFAULT_HOME)
	})
}

func TestConfigValidation(t *testing.T) {
	Convey("starting from a valid config", t, func() {
		config := DefaultConfig()

		Convey("newer major versions are refused", func() {
			config.Version = "2.0.0"
			So(config.Validate(), ShouldResemble, deverr.ConfigVersionError{Version: "2.0.0", Constraint: CONFIG_VERSION})
		})

		Convey("garbage versions are refused", func() {
			config.Version = "latest"
			So(config.Validate(), ShouldNotBeNil)
		})

		Convey("channels must all be present", func() {
			config.Channels = config.Channels[:4]
			So(config.Validate(), ShouldNotBeNil)
		})

		Convey("channels may not repeat", func() {
			config.Channels[4].ID = 1
			So(config.Validate().Error(), ShouldContainSubstring, "twice")
		})

		Convey("channel ids must be in range", func() {
			config.Channels[4].ID = 6
			So(config.Validate(), ShouldResemble, deverr.ChannelError{ID: 6})
		})

		Convey("every channel register must be inside the window", func() {
			config.Registers.Length = 0x100
			err := config.Validate()
			So(errors.Cause(err), ShouldEqual, hardware.ERR_BAD_OFFSET)
			So(err.Error(), ShouldContainSubstring, "channel 1")
		})

		Convey("the last register may end at the window end", func() {
			config.Registers.Length = 0x114
			So(config.Validate(), ShouldBeNil)
			config.Registers.Length = 0x113
			So(errors.Cause(config.Validate()), ShouldEqual, hardware.ERR_BAD_OFFSET)
		})

		Convey("channel registers must be aligned", func() {
			config.Channels[2].Offset = 0x109
			So(errors.Cause(config.Validate()), ShouldEqual, hardware.ERR_BAD_OFFSET)
		})

		Convey("device timed speeds must fit the register", func() {
			config.Motion.Speed = motion.MAX_DEVICE_SPEED + 1
			So(config.Validate().Error(), ShouldContainSubstring, "must not exceed")

			config.Motion.Speed = motion.MAX_DEVICE_SPEED
			config.Motion.HomeSpeed = 300
			So(config.Validate(), ShouldNotBeNil)

			Convey("but host timed speeds need not", func() {
				config.Motion.Strategy = motion.STRATEGY_HOST
				config.Motion.Speed = 300
				So(config.Validate(), ShouldBeNil)
			})
		})

		Convey("unknown strategies are refused", func() {
			config.Motion.Strategy = "teleport"
			So(config.Validate(), ShouldNotBeNil)
		})

		Convey("speeds must be positive", func() {
			config.Motion.Speed = 0
			So(config.Validate(), ShouldNotBeNil)
		})

		Convey("host timing needs a step rate", func() {
			config.Motion.Strategy = motion.STRATEGY_HOST
			config.Motion.StepRate = 0
			So(config.Validate(), ShouldNotBeNil)
		})
	})

	Convey("bad yaml is reported with the file name", t, func() {
		filename := writeConfig(t, "version: [")
		defer os.RemoveAll(filepath.Dir(filename))

		_, err := LoadConfig(filename)
		So(err.Error(), ShouldContainSubstring, filename)
	})

	Convey("the default config round trips through yaml", t, func() {
		raw, err := yaml.Marshal(DefaultConfig())
		So(err, ShouldBeNil)

		var config ArmConfig
		So(yaml.Unmarshal(raw, &config), ShouldBeNil)
		So(config.Validate(), ShouldBeNil)
	})
}
