// Package keybd registers the "keybd" emulator backend, which sends
// hardware scan codes through github.com/micmonay/keybd_event. Games that
// read DirectInput ignore virtual-key events but accept scan codes, so this
// is the default backend on Windows. On other platforms the backend is
// registered but New reports emulator.ErrUnsupported.
package keybd
