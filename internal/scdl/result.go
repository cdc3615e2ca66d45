package scdl

// Result is what a download produces. It is one of *File, *Failure or *Saved;
// a nil Result means the download finished without anything usable.
type Result interface {
	isResult()
}

// File is a single audio file held in memory.
type File struct {
	Filename string

	// Optional content type hint, empty when it could not be determined
	ContentType string

	Data []byte
}

// Failure describes why a download did not succeed.
type Failure struct {
	Message string

	// The resource exists but cannot be returned as a single in-memory file,
	// e.g. a playlist
	UnsupportedForDirectDownload bool
}

// Saved lists the files written in filesystem mode.
type Saved struct {
	Files []string
}

func (*File) isResult()    {}
func (*Failure) isResult() {}
func (*Saved) isResult()   {}

func (f *Failure) Error() string {
	return f.Message
}

func failure(err error) *Failure {
	return &Failure{Message: err.Error()}
}

func unsupported(message string) *Failure {
	return &Failure{Message: message, UnsupportedForDirectDownload: true}
}
