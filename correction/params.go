package correction

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ParamsSize is the size in bytes of the correction uniform buffer.
const ParamsSize = 112

// Params is the GPU layout of a correction model.
// Must match CorrectionParams in shaders/correction.wgsl.
//
// Each channel holds up to seven coefficients packed into two vec4s. For
// Psychopy the first three slots are a, b and c.
type Params struct {
	R, G, B [8]float32
	Kind    uint32
	Floor   float32
	_       [2]uint32
}

// ErrNoGPULayout is returned by ParamsFor for models the correction shader
// cannot evaluate.
var ErrNoGPULayout = errors.New("correction: model has no GPU layout")

// ParamsFor packs m into its uniform layout. A nil model packs as None.
// Models other than None, Psychopy and PolyLog return ErrNoGPULayout so the
// GPU pass never silently skips a correction the CPU path applies.
func ParamsFor(m Model) (Params, error) {
	p := Params{Floor: DefaultFloor}
	switch m := m.(type) {
	case nil, None, *None:
	case *Psychopy:
		p.Kind = uint32(KindPsychopy)
		for ch, dst := range []*[8]float32{&p.R, &p.G, &p.B} {
			c := m.coeffs[ch]
			dst[0], dst[1], dst[2] = float32(c.A), float32(c.B), float32(c.C)
		}
	case *PolyLog:
		p.Kind = uint32(m.Kind())
		p.Floor = float32(m.floor)
		for ch, dst := range []*[8]float32{&p.R, &p.G, &p.B} {
			for i, c := range m.coeffs[ch] {
				dst[i] = float32(c)
			}
		}
	default:
		return Params{}, fmt.Errorf("%w: %T (%s)", ErrNoGPULayout, m, m.Kind())
	}
	return p, nil
}

// Bytes returns p in the little-endian layout expected by the uniform buffer.
func (p Params) Bytes() []byte {
	buf := make([]byte, 0, ParamsSize)
	for _, ch := range [][8]float32{p.R, p.G, p.B} {
		for _, v := range ch {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
		}
	}
	buf = binary.LittleEndian.AppendUint32(buf, p.Kind)
	buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(p.Floor))
	buf = binary.LittleEndian.AppendUint32(buf, 0)
	buf = binary.LittleEndian.AppendUint32(buf, 0)
	return buf
}
