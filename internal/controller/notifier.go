package controller

import (
	"fmt"
	"io"
	"sync"
)

// Notifier shows transient notices to the user.
type Notifier interface {
	Success(title, description string)
	Error(title, description string)
}

// NopNotifier drops every notice.
type NopNotifier struct{}

func (NopNotifier) Success(string, string) {}
func (NopNotifier) Error(string, string)   {}

// WriterNotifier prints notices as single lines.
type WriterNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

// NewWriterNotifier writes notices to out.
func NewWriterNotifier(out io.Writer) *WriterNotifier {
	return &WriterNotifier{out: out}
}

func (n *WriterNotifier) Success(title, description string) {
	n.write("✓", title, description)
}

func (n *WriterNotifier) Error(title, description string) {
	n.write("✗", title, description)
}

func (n *WriterNotifier) write(mark, title, description string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if description == "" {
		fmt.Fprintf(n.out, "%s %s\n", mark, title)
		return
	}
	fmt.Fprintf(n.out, "%s %s: %s\n", mark, title, description)
}
