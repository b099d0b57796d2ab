package dashboard

import (
	"fmt"
	"sync"
)

// ToastKind is the severity of a toast
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastInfo    ToastKind = "info"
	ToastError   ToastKind = "error"
)

// Toast is a one-shot message shown on the next page render
type Toast struct {
	Kind    ToastKind `json:"kind"`
	Message string    `json:"message"`
}

func successf(format string, args ...any) Toast {
	return Toast{Kind: ToastSuccess, Message: fmt.Sprintf(format, args...)}
}

func infof(format string, args ...any) Toast {
	return Toast{Kind: ToastInfo, Message: fmt.Sprintf(format, args...)}
}

func errorf(format string, args ...any) Toast {
	return Toast{Kind: ToastError, Message: fmt.Sprintf(format, args...)}
}

// Toasts is a flash queue drained on render
type Toasts struct {
	mu    sync.Mutex
	items []Toast
}

// Push queues toasts
func (t *Toasts) Push(toasts ...Toast) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = append(t.items, toasts...)
}

// Drain returns and clears the queued toasts
func (t *Toasts) Drain() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.items
	t.items = nil
	return out
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
