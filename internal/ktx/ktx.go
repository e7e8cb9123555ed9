// Package ktx drives the external toktx executable from KTX-Software to
// produce mip-mapped KTX2 containers.
package ktx

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Invoker runs toktx. The zero value is not usable; set Tool to the
// executable name or path.
type Invoker struct {
	// Tool is the toktx executable, resolved through PATH if relative.
	Tool string
	// Levels caps the mip chain when > 0; 0 requests the full chain.
	Levels int
}

// New returns an Invoker for the given toktx executable.
func New(tool string) *Invoker {
	return &Invoker{Tool: tool}
}

// BuildArgs constructs the deterministic toktx argument list: mipmap
// generation, KTX2 container format, optional level cap, optional layer
// count for texture arrays, then the output path followed by the ordered
// input files.
func BuildArgs(inputs []string, layers int, output string, levels int) []string {
	args := []string{"--genmipmap", "--t2"}
	if levels > 0 {
		args = append(args, "--levels", strconv.Itoa(levels))
	}
	if layers > 0 {
		args = append(args, "--layers", strconv.Itoa(layers))
	}
	args = append(args, output)
	args = append(args, inputs...)
	return args
}

// Compress invokes toktx synchronously on the given input files and
// blocks until the subprocess exits. When layers > 0 the inputs become
// the ordered layers of a texture array. A non-zero exit is returned as a
// *ToolError carrying the full command line.
func (iv *Invoker) Compress(inputs []string, layers int, output string) error {
	args := BuildArgs(inputs, layers, output, iv.Levels)

	cmd := exec.Command(iv.Tool, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	fmt.Fprintf(os.Stderr, "Running: %s %s\n", iv.Tool, strings.Join(args, " "))

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ToolError{
				Tool:     iv.Tool,
				Args:     args,
				ExitCode: exitErr.ExitCode(),
				Stderr:   stderr.String(),
			}
		}
		return fmt.Errorf("can't run %s: %w", iv.Tool, err)
	}

	return nil
}

// ToolError reports a non-zero exit from the external compression tool.
// It carries the full command line and exit code so a failed run can be
// reproduced without a debugger.
type ToolError struct {
	Tool     string
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s %s: exit code %d", e.Tool, strings.Join(e.Args, " "), e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}
