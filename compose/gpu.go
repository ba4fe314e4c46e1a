package compose

import "github.com/gogpu/gputypes"

// ColorTarget returns the render-pipeline colour target a GPU compositor
// uses to match Normal blending: premultiplied source-over into a target of
// the given format. The target must hold linear values; encoding happens in
// the correction pass.
func ColorTarget(format gputypes.TextureFormat) gputypes.ColorTargetState {
	premulBlend := gputypes.BlendStatePremultiplied()
	return gputypes.ColorTargetState{
		Format:    format,
		Blend:     &premulBlend,
		WriteMask: gputypes.ColorWriteMaskAll,
	}
}
