package pose

// modelPoints is a generic 3D head in arbitrary units, one point per
// landmark of the 68-point layout. The nose tip (landmark 33) is the origin;
// +Y is up and +Z points out of the face.
var modelPoints = [68][3]float64{
	// jaw
	{-350, 120, -310},
	{-345, 35, -280},
	{-330, -50, -250},
	{-310, -135, -220},
	{-260, -210, -190},
	{-200, -260, -158.75},
	{-140, -290, -127.5},
	{-70, -320, -96.25},
	{0, -330, -65},
	{70, -320, -96.25},
	{140, -290, -127.5},
	{200, -260, -158.75},
	{260, -210, -190},
	{310, -135, -220},
	{330, -50, -250},
	{345, 35, -280},
	{350, 120, -310},
	// right brow
	{-300, 235, -140},
	{-260, 245, -120},
	{-215, 250, -110},
	{-160, 245, -100},
	{-110, 240, -90},
	// left brow
	{110, 240, -90},
	{160, 245, -100},
	{215, 250, -110},
	{260, 245, -120},
	{300, 235, -140},
	// nose bridge
	{0, 170, -100},
	{0, 130, -55},
	{0, 90, -30},
	{0, 50, -15},
	// nose base
	{-60, 15, -30},
	{-30, 5, -15},
	{0, 0, 0},
	{30, 5, -15},
	{60, 15, -30},
	// right eye
	{-240, 170, -135},
	{-200, 185, -135},
	{-160, 185, -135},
	{-115, 170, -135},
	{-160, 155, -135},
	{-200, 155, -135},
	// left eye
	{115, 170, -135},
	{160, 185, -135},
	{200, 185, -135},
	{240, 170, -135},
	{200, 155, -135},
	{160, 155, -135},
	// outer lips
	{-150, -150, -125},
	{-100, -115, -115},
	{-50, -95, -110},
	{0, -100, -105},
	{50, -95, -110},
	{100, -115, -115},
	{150, -150, -125},
	{100, -180, -115},
	{50, -195, -110},
	{0, -200, -105},
	{-50, -195, -110},
	{-100, -180, -115},
	// inner lips
	{-100, -145, -125},
	{-50, -130, -125},
	{0, -125, -125},
	{50, -130, -125},
	{100, -145, -125},
	{50, -165, -125},
	{0, -170, -125},
	{-50, -165, -125},
}

// gazeTarget is the model-space point projected to get the pose point: a
// spot straight ahead of the nose.
var gazeTarget = [3]float64{0, 0, 1000}
