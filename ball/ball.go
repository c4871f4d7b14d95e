package ball

// Ball constants
const (
	Radius      float32 = 0.1
	ServeSpeedX float32 = 0.05
	ServeSpeedY float32 = 0.02
)

// Ball is the singleton ball record. Velocities are in court units per tick.
type Ball struct {
	X, Y   float32
	VX, VY float32
}

// New returns the ball placed at centre court with the initial serve.
func New() Ball {
	return Ball{VX: ServeSpeedX, VY: ServeSpeedY}
}
