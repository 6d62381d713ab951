// Package doa estimates the direction of arrival of a single far-field
// source from the short-time spectra of a planar microphone array.
//
// Estimators consume a [Spectrogram] laid out as [channel][bin][frame] and
// return a [Response]. A response is either a [GridResponse], one value per
// bearing bin, or an [ImageResponse], a complex spatial image whose columns
// are labelled with bearings. [EstimatedBearing] extracts the bearing of the
// strongest peak from either kind.
//
// Bearings are in degrees, counter-clockwise from the +x axis, in [0, 360).
//
// Estimators are created by name through a [Registry]:
//
//	est, err := doa.New("MUSIC", geom, doa.DefaultParams())
//	resp, err := est.Locate(ctx, X)
//	deg, err := doa.EstimatedBearing(resp)
package doa
