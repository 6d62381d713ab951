// Package ir provides windowing and onset analysis for measured and
// simulated room impulse responses.
//
// Measured recordings are cut to a fixed window [start, start+length) before
// further processing; simulated responses are truncated or zero-padded to a
// fixed length. Within a window, the onset is the first sample whose
// absolute amplitude exceeds a threshold. Collected over many channels, the
// onset mean and standard deviation are a sanity check that the window
// start matches the direct-sound arrival.
//
// # Usage
//
//	win, err := ir.Extract(recording, 9600, 1600)
//	det := ir.OnsetDetector{Mode: ir.ThresholdAbsolute, Threshold: 0.05}
//	var c ir.OnsetCollector
//	c.Observe(det.Find(win))
//	fmt.Printf("onset %.2f ± %.2f samples\n", c.Stats().Mean, c.Stats().Std)
package ir
