// Package image stores linked programs so they can be run without
// assembling and linking again.
package image

import (
	"errors"
	"fmt"
	"os"

	"stackvm/pkg/vm"

	"github.com/fxamacker/cbor/v2"
)

// Version is the image format written by Encode
const Version = 1

var (
	ErrCorruptImage       = errors.New("corrupt image")
	ErrUnsupportedVersion = errors.New("unsupported image version")
)

type image struct {
	Version   uint          `cbor:"1,keyasint"`
	Entry     string        `cbor:"2,keyasint"`
	Functions []function    `cbor:"3,keyasint"`
	Program   []instruction `cbor:"4,keyasint"`
}

type function struct {
	_     struct{} `cbor:",toarray"`
	Name  string
	Start int
	End   int
}

type instruction struct {
	_      struct{} `cbor:",toarray"`
	Kind   int
	Value  int32
	Depth  int
	Op     int
	Cond   int
	Offset int
	Target int
}

// canonical encoding keeps images byte-identical for identical programs
var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("image: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// Encode serializes the linked program of it together with its entry name
func Encode(it *vm.Interpreter) ([]byte, error) {
	img := image{
		Version: Version,
		Entry:   it.Entry(),
	}

	for _, e := range it.Functions().Entries() {
		img.Functions = append(img.Functions, function{
			Name:  e.Name,
			Start: int(e.Function.Start),
			End:   int(e.Function.End),
		})
	}

	for _, in := range it.Program() {
		img.Program = append(img.Program, instruction{
			Kind:   int(in.Kind),
			Value:  in.Value,
			Depth:  in.Depth,
			Op:     int(in.Op),
			Cond:   int(in.Cond),
			Offset: in.Offset,
			Target: int(in.Target),
		})
	}

	return encMode.Marshal(img)
}

// Decode rebuilds an interpreter from an encoded image. The stored entry
// applies unless opts override it.
func Decode(data []byte, opts ...vm.Option) (*vm.Interpreter, error) {
	var img image
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptImage, err)
	}

	if img.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, img.Version)
	}

	entries := make([]vm.FunctionEntry, 0, len(img.Functions))
	for _, f := range img.Functions {
		entries = append(entries, vm.FunctionEntry{
			Function: vm.Function{Start: vm.Pos(f.Start), End: vm.Pos(f.End)},
			Name:     f.Name,
		})
	}

	program := make([]vm.Instruction, 0, len(img.Program))
	for _, in := range img.Program {
		program = append(program, vm.Instruction{
			Kind:   vm.Kind(in.Kind),
			Value:  in.Value,
			Depth:  in.Depth,
			Op:     vm.Operation(in.Op),
			Cond:   vm.Condition(in.Cond),
			Offset: in.Offset,
			Target: vm.Pos(in.Target),
		})
	}

	if img.Entry != "" {
		opts = append([]vm.Option{vm.WithEntry(img.Entry)}, opts...)
	}

	it, err := vm.Restore(entries, program, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptImage, err)
	}

	return it, nil
}

// WriteFile encodes it into the file at path
func WriteFile(path string, it *vm.Interpreter) error {
	data, err := Encode(it)
	if err != nil {
		return fmt.Errorf("cannot encode image: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}

	return nil
}

// ReadFile decodes the image stored at path
func ReadFile(path string, opts ...vm.Option) (*vm.Interpreter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	it, err := Decode(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return it, nil
}
