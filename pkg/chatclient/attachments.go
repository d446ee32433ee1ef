package chatclient

import (
	"context"
	"io"
	"sync"
)

// Uploader turns one local file into a durable attachment.
type Uploader interface {
	Upload(ctx context.Context, name, fileType string, content io.Reader) (Attachment, error)
}

// BlobRef is a handle on a client-local preview resource (the browser
// object-URL analog). It must be released exactly once, when the preview is
// replaced by a durable URL, removed from the pending set, or the composer
// is torn down.
type BlobRef interface {
	Release()
}

// PendingFile is one selected file waiting to be sent. URL is empty until
// upload completes; Blob holds the local preview reference meanwhile.
type PendingFile struct {
	Name    string
	Type    string
	Size    int64
	URL     string
	Blob    BlobRef
	Content io.Reader
}

// NoticeFunc surfaces a user-visible failure naming the offending file.
type NoticeFunc func(message string)

// Composer owns the pending-send set for one compose box. Files keep their
// selection order no matter what order their uploads complete in; a failed
// upload drops only that file and never blocks the rest.
type Composer struct {
	uploader Uploader
	notify   NoticeFunc

	mu        sync.Mutex
	files     []*PendingFile
	uploading int
}

func NewComposer(uploader Uploader, notify NoticeFunc) *Composer {
	if notify == nil {
		notify = func(string) {}
	}
	return &Composer{uploader: uploader, notify: notify}
}

// AddFiles appends to the pending set, preserving selection order.
func (c *Composer) AddFiles(files ...*PendingFile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files = append(c.files, files...)
}

// Remove drops the file at the given position and releases its preview.
func (c *Composer) Remove(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.files) {
		return
	}
	releaseBlob(c.files[index])
	c.files = append(c.files[:index], c.files[index+1:]...)
}

// UploadPending uploads every file that does not yet carry a durable URL,
// one goroutine per file. A file already uploaded keeps its URL untouched
// (send-time re-check). Results land back on the files in place, so the
// selection order survives arbitrary completion order; filename identity is
// what ties a completion to its slot.
func (c *Composer) UploadPending(ctx context.Context) {
	c.mu.Lock()
	pending := make([]*PendingFile, 0, len(c.files))
	for _, f := range c.files {
		if f.URL == "" {
			pending = append(pending, f)
		}
	}
	c.uploading += len(pending)
	c.mu.Unlock()

	var wg sync.WaitGroup
	for _, f := range pending {
		wg.Add(1)
		go func(f *PendingFile) {
			defer wg.Done()
			attachment, err := c.uploader.Upload(ctx, f.Name, f.Type, f.Content)

			c.mu.Lock()
			c.uploading--
			if err != nil {
				c.removeByNameLocked(f.Name)
				c.mu.Unlock()
				c.notify("Failed to upload " + f.Name)
				return
			}
			f.URL = attachment.URL
			if attachment.Size > 0 {
				f.Size = attachment.Size
			}
			releaseBlob(f)
			c.mu.Unlock()
		}(f)
	}
	wg.Wait()
}

// Busy reports whether uploads are still outstanding; the send control
// stays disabled while it returns true.
func (c *Composer) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.uploading > 0
}

// Attachments returns the uploaded files in selection order, ready to attach
// to an outgoing message.
func (c *Composer) Attachments() []Attachment {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Attachment, 0, len(c.files))
	for _, f := range c.files {
		if f.URL == "" {
			continue
		}
		out = append(out, Attachment{
			Name: f.Name,
			Type: f.Type,
			Size: f.Size,
			URL:  f.URL,
		})
	}
	return out
}

// Clear empties the pending set after a successful send. Durable URLs now
// belong to the sent message; any remaining previews are released.
func (c *Composer) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, f := range c.files {
		releaseBlob(f)
	}
	c.files = nil
}

// Teardown releases every preview when the compose view goes away.
func (c *Composer) Teardown() {
	c.Clear()
}

func (c *Composer) removeByNameLocked(name string) {
	for i, f := range c.files {
		if f.Name == name {
			releaseBlob(f)
			c.files = append(c.files[:i], c.files[i+1:]...)
			return
		}
	}
}

func releaseBlob(f *PendingFile) {
	if f.Blob != nil {
		f.Blob.Release()
		f.Blob = nil
	}
}
