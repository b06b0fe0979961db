package api

// File is an in-memory upload attached to a wizard step or a multipart
// request
type File struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type,omitempty"`
	Data        []byte `json:"-"`
}

// Size returns the length of the file contents
func (f *File) Size() int {
	return len(f.Data)
}
