package doa

import (
	"encoding/json"
	"fmt"

	"github.com/cwbudde/algo-doa/dsp/spectrum"
	"github.com/cwbudde/algo-doa/geometry"
)

// Kind tags the concrete type of a [Response].
type Kind string

// Response kinds.
const (
	KindGrid  Kind = "grid"
	KindImage Kind = "image"
)

// Response is the raw output of an estimator: either a [GridResponse] or an
// [ImageResponse]. The set of implementations is closed.
type Response interface {
	Kind() Kind
	response()
}

// GridResponse holds one value per bearing bin; bin i covers
// i*360/len(Values) degrees. With 360 bins the index is the degree.
type GridResponse struct {
	Values []float64
}

// Kind implements [Response].
func (GridResponse) Kind() Kind { return KindGrid }

func (GridResponse) response() {}

// Order is the flattening order of an image.
type Order int

const (
	// RowMajor stores pixel (r, c) at r*Cols + c.
	RowMajor Order = iota
	// ColumnMajor stores pixel (r, c) at c*Rows + r.
	ColumnMajor
)

// String returns "row-major" or "column-major".
func (o Order) String() string {
	if o == ColumnMajor {
		return "column-major"
	}
	return "row-major"
}

// ImageResponse is a complex spatial image of Rows x Cols pixels flattened
// in Order. Column c corresponds to bearing ColumnBearings[c].
type ImageResponse struct {
	Pixels         []complex128
	Rows, Cols     int
	Order          Order
	ColumnBearings []float64
}

// Kind implements [Response].
func (ImageResponse) Kind() Kind { return KindImage }

func (ImageResponse) response() {}

// Column returns the column of flat pixel index i.
func (r ImageResponse) Column(i int) int {
	if r.Order == ColumnMajor {
		return i / r.Rows
	}
	return i % r.Cols
}

func (r ImageResponse) validate() error {
	if r.Rows <= 0 || r.Cols <= 0 || len(r.Pixels) != r.Rows*r.Cols {
		return fmt.Errorf("%w: image %dx%d with %d pixels", ErrShape, r.Rows, r.Cols, len(r.Pixels))
	}
	if len(r.ColumnBearings) != r.Cols {
		return fmt.Errorf("%w: %d column bearings for %d columns", ErrShape, len(r.ColumnBearings), r.Cols)
	}
	return nil
}

// EstimatedBearing returns the bearing of the strongest peak of resp in
// degrees within [0, 360). Grid responses use the index of the largest
// value; images use the largest magnitude over the flattened pixels,
// mapped back to its column with the image's own flattening order.
func EstimatedBearing(resp Response) (float64, error) {
	switch r := resp.(type) {
	case GridResponse:
		idx := spectrum.ArgMax(r.Values)
		if idx < 0 {
			return 0, ErrEmptyResponse
		}
		return geometry.NormalizeDegrees(float64(idx) * 360 / float64(len(r.Values))), nil
	case *GridResponse:
		if r == nil {
			return 0, ErrEmptyResponse
		}
		return EstimatedBearing(*r)
	case ImageResponse:
		if err := r.validate(); err != nil {
			return 0, err
		}
		idx := spectrum.ArgMaxMagnitude(r.Pixels)
		if idx < 0 {
			return 0, ErrEmptyResponse
		}
		return geometry.NormalizeDegrees(r.ColumnBearings[r.Column(idx)]), nil
	case *ImageResponse:
		if r == nil {
			return 0, ErrEmptyResponse
		}
		return EstimatedBearing(*r)
	case nil:
		return 0, ErrEmptyResponse
	default:
		return 0, fmt.Errorf("doa: unsupported response type %T", resp)
	}
}

// Envelope wraps a Response for JSON encoding with a "kind" tag. Complex
// pixels are stored as separate real and imaginary arrays.
type Envelope struct {
	Response Response
}

type envelopeJSON struct {
	Kind           Kind      `json:"kind"`
	Values         []float64 `json:"values,omitempty"`
	Real           []float64 `json:"real,omitempty"`
	Imag           []float64 `json:"imag,omitempty"`
	Rows           int       `json:"rows,omitempty"`
	Cols           int       `json:"cols,omitempty"`
	Order          string    `json:"order,omitempty"`
	ColumnBearings []float64 `json:"column_bearings,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (e Envelope) MarshalJSON() ([]byte, error) {
	switch r := e.Response.(type) {
	case *GridResponse:
		if r == nil {
			return []byte("null"), nil
		}
		return Envelope{Response: *r}.MarshalJSON()
	case *ImageResponse:
		if r == nil {
			return []byte("null"), nil
		}
		return Envelope{Response: *r}.MarshalJSON()
	case GridResponse:
		return json.Marshal(envelopeJSON{Kind: KindGrid, Values: r.Values})
	case ImageResponse:
		re := make([]float64, len(r.Pixels))
		im := make([]float64, len(r.Pixels))
		for i, p := range r.Pixels {
			re[i], im[i] = real(p), imag(p)
		}
		return json.Marshal(envelopeJSON{
			Kind:           KindImage,
			Real:           re,
			Imag:           im,
			Rows:           r.Rows,
			Cols:           r.Cols,
			Order:          r.Order.String(),
			ColumnBearings: r.ColumnBearings,
		})
	case nil:
		return []byte("null"), nil
	default:
		return nil, fmt.Errorf("doa: cannot encode response type %T", e.Response)
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var v envelopeJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v.Kind {
	case KindGrid:
		e.Response = GridResponse{Values: v.Values}
	case KindImage:
		if len(v.Real) != len(v.Imag) {
			return fmt.Errorf("doa: image has %d real and %d imaginary parts", len(v.Real), len(v.Imag))
		}
		px := make([]complex128, len(v.Real))
		for i := range px {
			px[i] = complex(v.Real[i], v.Imag[i])
		}
		order := RowMajor
		if v.Order == ColumnMajor.String() {
			order = ColumnMajor
		}
		e.Response = ImageResponse{Pixels: px, Rows: v.Rows, Cols: v.Cols, Order: order, ColumnBearings: v.ColumnBearings}
	case "":
		e.Response = nil
	default:
		return fmt.Errorf("doa: unknown response kind %q", v.Kind)
	}
	return nil
}

// Magnitudes returns |pixel| for every pixel of an image.
func (r ImageResponse) Magnitudes() []float64 {
	return spectrum.Magnitude(r.Pixels)
}
