package onboard

import (
	"github.com/CodedInternet/wiiarm/onboard/hardware"
	"github.com/go-gl/mathgl/mgl64"
)

// joint angle at which a link is in line with the one below it
const JOINT_NEUTRAL = 90

// Linkage holds the segment lengths of the arm in millimetres. The base joint yaws the
// whole arm, bicep, elbow and wrist pitch their link. The gripper does not move the tip.
type Linkage struct {
	BaseHeight float64 `yaml:"base_height"`
	Bicep      float64 `yaml:"bicep"`
	Forearm    float64 `yaml:"forearm"`
	Hand       float64 `yaml:"hand"`
}

var DefaultLinkage = Linkage{
	BaseHeight: 70,
	Bicep:      105,
	Forearm:    100,
	Hand:       80,
}

func jointRad(angle int) float64 {
	return mgl64.DegToRad(float64(angle - JOINT_NEUTRAL))
}

// Transform returns the homogeneous transform from the base frame to the tip for the given
// joint angles, ordered as the servo channels.
func (l Linkage) Transform(angles [hardware.NUM_CHANNELS]int) mgl64.Mat4 {
	links := []float64{l.Bicep, l.Forearm, l.Hand}

	transform := mgl64.HomogRotate3DZ(jointRad(angles[0]))
	transform = transform.Mul4(mgl64.Translate3D(0, 0, l.BaseHeight))

	for i, length := range links {
		// positive pitch leans the link back over the base
		transform = transform.Mul4(mgl64.HomogRotate3DY(-jointRad(angles[i+1])))
		transform = transform.Mul4(mgl64.Translate3D(0, 0, length))
	}

	return transform
}

// Tip is the position of the end of the hand in the base frame.
func (l Linkage) Tip(angles [hardware.NUM_CHANNELS]int) mgl64.Vec3 {
	return mgl64.TransformCoordinate(mgl64.Vec3{}, l.Transform(angles))
}

// Reach is the distance from the base axis to the tip when fully extended.
func (l Linkage) Reach() float64 {
	return l.Bicep + l.Forearm + l.Hand
}
