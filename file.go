package mediadrive

// File is the file descriptor handed over by the host media library.
// Ext includes the leading dot. Adapters only ever modify URL.
type File struct {
	Hash   string
	Ext    string
	Path   string
	Buffer []byte
	Mime   string
	URL    string
}

// Name returns the object file name, which is the hash followed by the extension.
func (f File) Name() string {
	return f.Hash + f.Ext
}
