// Package phase provides autoregressive signal modeling for phase
// extrapolation. A Modeler fits AR coefficients to a recent signal window
// using Burg's maximum-entropy method; Predict then extends the signal
// forward from those coefficients, which lets a consumer estimate the
// instantaneous phase of a band-limited signal past the end of the
// available data.
package phase
