package hardware

import (
	deverr "github.com/CodedInternet/wiiarm/onboard/errors"
)

const (
	NUM_CHANNELS = 5

	// home angle used when nothing else is configured
	DEFAULT_HOME = 150
)

// Channel describes one servo output of the FPGA.
type Channel struct {
	ID     int    `yaml:"id"` // 1 based, as printed on the board
	Name   string `yaml:"name"`
	Offset uint32 `yaml:"offset"`
	Home   int    `yaml:"home"`
}

// ChannelTable is indexed by channel ID - 1.
type ChannelTable [NUM_CHANNELS]Channel

var DefaultChannels = ChannelTable{
	{ID: 1, Name: "base", Offset: 0x100, Home: DEFAULT_HOME},
	{ID: 2, Name: "bicep", Offset: 0x104, Home: DEFAULT_HOME},
	{ID: 3, Name: "elbow", Offset: 0x108, Home: DEFAULT_HOME},
	{ID: 4, Name: "wrist", Offset: 0x10C, Home: DEFAULT_HOME},
	{ID: 5, Name: "gripper", Offset: 0x110, Home: DEFAULT_HOME},
}

func (t *ChannelTable) Lookup(id int) (c Channel, err error) {
	if id < 1 || id > NUM_CHANNELS {
		return c, deverr.ChannelError{ID: id}
	}

	return t[id-1], nil
}

// ByName finds a channel by its configured name.
func (t *ChannelTable) ByName(name string) (c Channel, err error) {
	for _, c = range t {
		if c.Name == name {
			return c, nil
		}
	}

	return Channel{}, deverr.ChannelError{Name: name}
}
