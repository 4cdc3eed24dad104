package filters

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/janpfeifer/daltonview/config"
)

// MachadoMatrices holds the Machado, Oliveira and Fernandes (2009) simulation
// matrices at full severity, flattened row-major.
var MachadoMatrices = map[config.VisionType][9]float64{
	config.Deutan: {
		0.367322, 0.280085, -0.011820,
		0.860646, 0.672501, 0.042940,
		-0.227968, 0.047413, 0.968881},
	config.Deuteranomaly: {
		0.457771, 0.226409, -0.011595,
		0.731899, 0.731012, 0.034333,
		-0.189670, 0.042579, 0.977261},
	config.Protan: {
		0.152286, 0.114503, -0.003882,
		1.052583, 0.786281, -0.048116,
		-0.204868, 0.099216, 1.051998},
	config.Protanomaly: {
		0.319627, 0.106241, -0.007025,
		0.849633, 0.815969, -0.028051,
		-0.169261, 0.077790, 1.035076},
	config.Tritan: {
		1.255528, -0.078411, 0.004733,
		-0.076749, 0.930809, 0.691367,
		-0.178779, 0.147602, 0.303900},
	config.Tritanomaly: {
		1.193214, -0.058496, -0.002346,
		-0.109812, 0.979410, 0.403492,
		-0.083402, 0.079086, 0.598854},
}

// machadoMat3 arranges m so that out_i = sum_j m[3i+j] * in_j.
func machadoMat3(m [9]float64) mgl64.Mat3 {
	return mgl64.Mat3FromRows(
		mgl64.Vec3{m[0], m[1], m[2]},
		mgl64.Vec3{m[3], m[4], m[5]},
		mgl64.Vec3{m[6], m[7], m[8]})
}

// MachadoTransform applies m to one linear RGB color, without clamping.
// Pure red maps to (m[0], m[3], m[6]).
func MachadoTransform(m [9]float64, rgb mgl64.Vec3) mgl64.Vec3 {
	return machadoMat3(m).Mul3x1(rgb)
}

// Machado returns a Filter applying m in linear light.
func Machado(m [9]float64) Filter {
	mat := machadoMat3(m)
	return NewPixelFilter("machado", Linear, func(c mgl64.Vec3) mgl64.Vec3 {
		return mat.Mul3x1(c)
	})
}
