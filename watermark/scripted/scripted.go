// Package scripted turns a JavaScript definition into a watermarking
// method, so hosts can register new methods at runtime without
// rebuilding. The script defines:
//
//	function addWatermark(pdfB64, secret, position) -> string (pdf as base64)
//	function readSecret(pdfB64) -> string
//	function isApplicable(pdfB64, position) -> bool   (optional)
//
// PDF bytes cross the boundary base64-encoded; the runtime provides
// b64encode/b64decode helpers for byte-level work. A script that
// throws surfaces as an error from the corresponding operation.
package scripted

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dop251/goja"

	"github.com/wudi/pdfmark/source"
	"github.com/wudi/pdfmark/watermark"
)

// Method is a watermarking method backed by a JS runtime. The runtime
// is single-threaded; calls are serialized internally.
type Method struct {
	name  string
	usage string

	mu         sync.Mutex
	vm         *goja.Runtime
	add        goja.Callable
	read       goja.Callable
	applicable goja.Callable
}

// New compiles script and binds the required functions. name becomes
// the method's registry identifier.
func New(name, script string) (*Method, error) {
	if name == "" {
		return nil, errors.New("scripted: method name must not be empty")
	}
	vm := goja.New()
	registerHelpers(vm)
	if _, err := vm.RunString(script); err != nil {
		return nil, fmt.Errorf("scripted: evaluate script: %w", err)
	}

	m := &Method{name: name, vm: vm}

	var ok bool
	if m.add, ok = goja.AssertFunction(vm.Get("addWatermark")); !ok {
		return nil, errors.New("scripted: script must define addWatermark(pdfB64, secret, position)")
	}
	if m.read, ok = goja.AssertFunction(vm.Get("readSecret")); !ok {
		return nil, errors.New("scripted: script must define readSecret(pdfB64)")
	}
	// Optional; absence means "any PDF".
	m.applicable, _ = goja.AssertFunction(vm.Get("isApplicable"))

	if v := vm.Get("usage"); v != nil && !goja.IsUndefined(v) && !goja.IsNull(v) {
		m.usage = v.String()
	}
	return m, nil
}

// NameFromPath derives a registry name from a script file path:
// the base name with its extension stripped.
func NameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (m *Method) Name() string { return m.name }

func (m *Method) Usage() string {
	if m.usage != "" {
		return m.usage
	}
	return "Script-defined watermarking method."
}

func (m *Method) AddWatermark(ctx context.Context, pdf source.Source, secret string, opts watermark.Options) ([]byte, error) {
	data, err := source.LoadPDF(pdf)
	if err != nil {
		return nil, err
	}
	res, err := m.call(ctx, m.add,
		base64.StdEncoding.EncodeToString(data), secret, opts.Position)
	if err != nil {
		return nil, fmt.Errorf("scripted %s: addWatermark: %w", m.name, err)
	}
	out, err := base64.StdEncoding.DecodeString(res.String())
	if err != nil {
		return nil, fmt.Errorf("scripted %s: addWatermark returned invalid base64: %w", m.name, err)
	}
	return out, nil
}

func (m *Method) ReadSecret(ctx context.Context, pdf source.Source, _ watermark.Options) (string, error) {
	data, err := source.LoadPDF(pdf)
	if err != nil {
		return "", err
	}
	res, err := m.call(ctx, m.read, base64.StdEncoding.EncodeToString(data))
	if err != nil {
		return "", fmt.Errorf("scripted %s: readSecret: %w", m.name, err)
	}
	if goja.IsUndefined(res) || goja.IsNull(res) {
		return "", fmt.Errorf("scripted %s: %w", m.name, watermark.ErrSecretNotFound)
	}
	return res.String(), nil
}

func (m *Method) Applicable(ctx context.Context, pdf source.Source, opts watermark.Options) bool {
	data, err := source.LoadPDF(pdf)
	if err != nil {
		return false
	}
	if m.applicable == nil {
		return true
	}
	res, err := m.call(ctx, m.applicable,
		base64.StdEncoding.EncodeToString(data), opts.Position)
	if err != nil {
		return false
	}
	return res.ToBoolean()
}

// registerHelpers exposes binary-safe base64 helpers to scripts:
// b64decode maps each byte to one JS code unit (0-255), b64encode
// reverses that. Scripts use them to work on the raw document.
func registerHelpers(vm *goja.Runtime) {
	vm.Set("b64decode", func(s string) (string, error) {
		raw, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return "", err
		}
		runes := make([]rune, len(raw))
		for i, b := range raw {
			runes[i] = rune(b)
		}
		return string(runes), nil
	})
	vm.Set("b64encode", func(s string) string {
		runes := []rune(s)
		raw := make([]byte, len(runes))
		for i, r := range runes {
			raw[i] = byte(r)
		}
		return base64.StdEncoding.EncodeToString(raw)
	})
}

// call invokes fn under the runtime lock, interrupting the script if
// ctx is canceled mid-run.
func (m *Method) call(ctx context.Context, fn goja.Callable, args ...interface{}) (goja.Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	done := make(chan struct{})
	defer close(done)
	defer m.vm.ClearInterrupt()
	go func() {
		select {
		case <-ctx.Done():
			m.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	vals := make([]goja.Value, len(args))
	for i, a := range args {
		vals[i] = m.vm.ToValue(a)
	}
	res, err := fn(goja.Undefined(), vals...)
	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			if cause, ok := interrupted.Value().(error); ok {
				return nil, cause
			}
			return nil, context.Canceled
		}
		return nil, err
	}
	return res, nil
}
