package coordspace

import "github.com/getupyang/geo-guess-diy/internal/model"

// View is a render context fixed to a single frame. Everything drawn into
// one map view — markers, the guess-to-truth line, click coordinates — must
// go through the same View, otherwise distances and lines render wrong even
// though the stored data stays correct.
type View struct {
	frame Frame
}

// NewView creates a render context for the given frame.
func NewView(frame Frame) *View {
	return &View{frame: frame}
}

// ViewFor creates a render context whose frame is chosen from the viewport's
// effective center.
func ViewFor(center model.GeoPoint) *View {
	return NewView(PickFrame(center))
}

// Frame returns the view's fixed frame.
func (v *View) Frame() Frame {
	return v.frame
}

// Marker converts a stored geodetic point into display coordinates.
func (v *View) Marker(p model.GeoPoint) model.GeoPoint {
	return ToDisplay(p, v.frame)
}

// Line converts the endpoints of a guess-to-truth connecting line.
func (v *View) Line(from, to model.GeoPoint) (model.GeoPoint, model.GeoPoint) {
	return ToDisplay(from, v.frame), ToDisplay(to, v.frame)
}

// Click converts a raw click coordinate back to the geodetic frame before it
// is handed to the engine.
func (v *View) Click(p model.GeoPoint) model.GeoPoint {
	return ToGeodetic(p, v.frame)
}

// Refresh returns a view whose frame matches the new viewport center,
// reusing the receiver when the frame is unchanged.
func (v *View) Refresh(center model.GeoPoint) *View {
	if f := PickFrame(center); f != v.frame {
		return NewView(f)
	}
	return v
}
