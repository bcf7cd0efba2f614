package platform

type Event interface{}

// Resumed is the first event a loop delivers; windows may be created from
// then on.
type Resumed struct{}

type Resized struct {
	Width, Height int
}

type RedrawRequested struct{}

type CloseRequested struct{}

type KeyInput struct {
	Code    uint32
	Label   string
	Pressed bool
}

// Key labels shared by backends.
const (
	KeyEscape = "Escape"
	KeyF4     = "F4"
)
