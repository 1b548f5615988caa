package entity

// Screenshot is a captured page image, already re-encoded and resized
// for transport.
type Screenshot struct {
	Data   []byte
	Format string
	Width  int
	Height int
}
