package onboard

import (
	"context"

	"github.com/CodedInternet/wiiarm/onboard/hardware"
	"github.com/CodedInternet/wiiarm/onboard/motion"
	"github.com/go-gl/mathgl/mgl64"
)

// Manipulator is the arm together with the motion strategy chosen for it.
type Manipulator struct {
	Arm       *hardware.Arm
	Motion    motion.Profiler
	Links     Linkage
	HomeSpeed int
}

// ManipulatorState is a snapshot of what the arm was last told to do.
type ManipulatorState struct {
	Angles [hardware.NUM_CHANNELS]int
	Tip    mgl64.Vec3
}

// OpenWindow maps the register window described by the config, or builds a memory backed
// one when simulated is set.
func OpenWindow(config RegisterConfig, simulated bool) (hardware.RegisterWindow, error) {
	if simulated {
		return hardware.NewSimulatedWindow(config.Length), nil
	}

	w, err := hardware.OpenMemWindow(config.Device, config.Base, config.Length)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// NewManipulator takes ownership of window.
func NewManipulator(config ArmConfig, window hardware.RegisterWindow) (m *Manipulator, err error) {
	if err = config.Validate(); err != nil {
		return
	}

	table, err := config.ChannelTable()
	if err != nil {
		return
	}

	arm := hardware.NewArm(window, table)
	profiler, err := motion.New(config.Motion.Strategy, arm, config.Motion.StepRate, config.Motion.Quantum)
	if err != nil {
		return
	}

	m = &Manipulator{
		Arm:       arm,
		Motion:    profiler,
		Links:     config.Links,
		HomeSpeed: config.Motion.HomeSpeed,
	}
	return
}

// Home sends every joint to its home angle.
func (m *Manipulator) Home(ctx context.Context) error {
	for _, s := range m.Arm.Servos() {
		if err := m.Motion.Snap(ctx, s.ID, s.Home, m.HomeSpeed); err != nil {
			return err
		}
	}
	return nil
}

// MoveTo moves a joint from its last commanded angle to angle.
func (m *Manipulator) MoveTo(ctx context.Context, id, angle, speed int) error {
	s, err := m.Arm.Servo(id)
	if err != nil {
		return err
	}

	return m.Motion.Move(ctx, motion.Command{
		Channel: id,
		From:    s.Angle(),
		To:      angle,
		Speed:   speed,
	})
}

// WriteRaw stores value in a joint register as is, bypassing both motion strategies. Like
// any other motion it supersedes a ramp still running on the joint. The remembered angle is
// left alone.
func (m *Manipulator) WriteRaw(id int, value uint32) error {
	s, err := m.Arm.Servo(id)
	if err != nil {
		return err
	}

	_, release := s.Claim(context.Background())
	defer release()

	return s.Write(value)
}

func (m *Manipulator) State() (state ManipulatorState) {
	state.Angles = m.Arm.Angles()
	state.Tip = m.Links.Tip(state.Angles)
	return
}

// Release homes the arm and unmaps the registers. The window is closed even if homing fails.
func (m *Manipulator) Release(ctx context.Context) (err error) {
	err = m.Home(ctx)
	if cerr := m.Arm.Close(); err == nil {
		err = cerr
	}
	return
}
