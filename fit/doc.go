// Package fit extracts physical quantities from processed ODNP data:
// exponential relaxation fits of integrated signal curves, and the
// hydration-dynamics calculation that turns enhancement and T1 power
// series into ksigma, coupling factor, correlation time and local water
// diffusivity.
package fit
